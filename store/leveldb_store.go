package store

import (
	"bytes"
	"encoding/binary"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"golang.org/x/xerrors"

	"github.com/pageseeder/webcache-common/resource"
)

const (
	// key prefixes separating entry data from size metadata
	levelDBEntryPrefix = "e:"
	levelDBMetaPrefix  = "m:"
)

// LevelDBStore implements PersistedStore on a LevelDB database. Each entry
// is stored under an "e:" key with its byte size under the matching "m:"
// key, so the exact persisted footprint survives reopening the database.
type LevelDBStore struct {
	name      string
	dbPath    string
	db        *leveldb.DB
	sizes     map[string]int64
	totalSize int64
	mutex     sync.Mutex
}

// NewLevelDBStore opens or creates a LevelDB database at the given path and
// rebuilds the size index from the stored metadata
func NewLevelDBStore(name string, dbPath string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to open leveldb at %s: %w", dbPath, err)
	}

	levelDBStore := &LevelDBStore{
		name:   name,
		dbPath: dbPath,
		db:     db,
		sizes:  map[string]int64{},
	}

	err = levelDBStore.loadSizeIndex()
	if err != nil {
		db.Close()
		return nil, err
	}

	return levelDBStore, nil
}

// loadSizeIndex rebuilds the in-memory size index from the metadata records
func (levelDBStore *LevelDBStore) loadSizeIndex() error {
	logger := log.WithFields(log.Fields{
		"package":  "store",
		"struct":   "LevelDBStore",
		"function": "loadSizeIndex",
	})

	iterator := levelDBStore.db.NewIterator(util.BytesPrefix([]byte(levelDBMetaPrefix)), nil)
	defer iterator.Release()

	sizes := map[string]int64{}
	totalSize := int64(0)
	for iterator.Next() {
		key := string(bytes.TrimPrefix(iterator.Key(), []byte(levelDBMetaPrefix)))

		size, ok := decodeSizeRecord(iterator.Value())
		if !ok {
			logger.Errorf("skipping corrupt size record for key %q in store %q", key, levelDBStore.name)
			continue
		}

		sizes[key] = size
		totalSize += size
	}

	err := iterator.Error()
	if err != nil {
		return xerrors.Errorf("failed to scan size records of store %q: %w", levelDBStore.name, err)
	}

	levelDBStore.mutex.Lock()
	defer levelDBStore.mutex.Unlock()

	levelDBStore.sizes = sizes
	levelDBStore.totalSize = totalSize
	return nil
}

// Release closes the database
func (levelDBStore *LevelDBStore) Release() {
	err := levelDBStore.db.Close()
	if err != nil {
		log.WithFields(log.Fields{
			"package":  "store",
			"struct":   "LevelDBStore",
			"function": "Release",
		}).Errorf("failed to close leveldb at %s: %v", levelDBStore.dbPath, err)
	}
}

// GetName returns the name of the store
func (levelDBStore *LevelDBStore) GetName() string {
	return levelDBStore.name
}

// GetTotalEntries returns the number of entries in the store
func (levelDBStore *LevelDBStore) GetTotalEntries() int {
	levelDBStore.mutex.Lock()
	defer levelDBStore.mutex.Unlock()

	return len(levelDBStore.sizes)
}

// GetEntryKeys returns all entry keys
func (levelDBStore *LevelDBStore) GetEntryKeys() []string {
	levelDBStore.mutex.Lock()
	defer levelDBStore.mutex.Unlock()

	keys := make([]string, 0, len(levelDBStore.sizes))
	for key := range levelDBStore.sizes {
		keys = append(keys, key)
	}
	return keys
}

// GetPersistedSize returns the exact byte size of the persisted entries
func (levelDBStore *LevelDBStore) GetPersistedSize() (int64, error) {
	levelDBStore.mutex.Lock()
	defer levelDBStore.mutex.Unlock()

	return levelDBStore.totalSize, nil
}

// CreateEntry persists a resource under the given key
func (levelDBStore *LevelDBStore) CreateEntry(key string, res *resource.CachedResource) error {
	data, err := encodeResource(res)
	if err != nil {
		return xerrors.Errorf("failed to encode resource for key %q: %w", key, err)
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(levelDBEntryPrefix+key), data)
	batch.Put([]byte(levelDBMetaPrefix+key), encodeSizeRecord(int64(len(data))))

	err = levelDBStore.db.Write(batch, nil)
	if err != nil {
		return xerrors.Errorf("failed to write entry %q to store %q: %w", key, levelDBStore.name, err)
	}

	levelDBStore.mutex.Lock()
	defer levelDBStore.mutex.Unlock()

	if previousSize, ok := levelDBStore.sizes[key]; ok {
		levelDBStore.totalSize -= previousSize
	}
	levelDBStore.sizes[key] = int64(len(data))
	levelDBStore.totalSize += int64(len(data))
	return nil
}

// HasEntry checks if an entry for the given key is present
func (levelDBStore *LevelDBStore) HasEntry(key string) bool {
	levelDBStore.mutex.Lock()
	defer levelDBStore.mutex.Unlock()

	_, ok := levelDBStore.sizes[key]
	return ok
}

// GetEntry reads back the resource for the given key, nil if not present
func (levelDBStore *LevelDBStore) GetEntry(key string) (*resource.CachedResource, error) {
	data, err := levelDBStore.db.Get([]byte(levelDBEntryPrefix+key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, xerrors.Errorf("failed to read entry %q from store %q: %w", key, levelDBStore.name, err)
	}

	res, err := decodeResource(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode entry %q of store %q: %w", key, levelDBStore.name, err)
	}

	return res, nil
}

// DeleteEntry deletes the entry for the given key
func (levelDBStore *LevelDBStore) DeleteEntry(key string) {
	batch := new(leveldb.Batch)
	batch.Delete([]byte(levelDBEntryPrefix + key))
	batch.Delete([]byte(levelDBMetaPrefix + key))

	err := levelDBStore.db.Write(batch, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"package":  "store",
			"struct":   "LevelDBStore",
			"function": "DeleteEntry",
		}).Errorf("failed to delete entry %q from store %q: %v", key, levelDBStore.name, err)
		return
	}

	levelDBStore.mutex.Lock()
	defer levelDBStore.mutex.Unlock()

	if size, ok := levelDBStore.sizes[key]; ok {
		levelDBStore.totalSize -= size
		delete(levelDBStore.sizes, key)
	}
}

// DeleteAllEntries deletes all entries
func (levelDBStore *LevelDBStore) DeleteAllEntries() {
	for _, key := range levelDBStore.GetEntryKeys() {
		levelDBStore.DeleteEntry(key)
	}
}

// encodeSizeRecord encodes a byte size as a fixed-width metadata value
func encodeSizeRecord(size int64) []byte {
	record := make([]byte, 8)
	binary.BigEndian.PutUint64(record, uint64(size))
	return record
}

// decodeSizeRecord decodes a size metadata value
func decodeSizeRecord(record []byte) (int64, bool) {
	if len(record) != 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(record)), true
}
