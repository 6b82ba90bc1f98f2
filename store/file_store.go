package store

import (
	"os"
	"sync"

	lrucache "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/pageseeder/webcache-common/resource"
	"github.com/pageseeder/webcache-common/utils"
)

// fileStoreEntry is one persisted resource, a file under the store root
type fileStoreEntry struct {
	key      string
	filePath string
	size     int64
}

// FileStore implements PersistedStore with one file per entry under a root
// directory. Files are named by the hash of the entry key; eviction unlinks
// the file. The persisted size is tracked exactly from the bytes written.
type FileStore struct {
	name      string
	rootPath  string
	cache     *lrucache.Cache
	totalSize int64
	mutex     sync.Mutex
}

// NewFileStore creates a new FileStore under the given root directory,
// holding up to entryCap entries
func NewFileStore(name string, rootPath string, entryCap int) (*FileStore, error) {
	err := os.MkdirAll(rootPath, 0766)
	if err != nil {
		return nil, xerrors.Errorf("failed to make cache dir %s: %w", rootPath, err)
	}

	fileStore := &FileStore{
		name:     name,
		rootPath: rootPath,
	}

	lruCache, err := lrucache.NewWithEvict(entryCap, fileStore.onEvicted)
	if err != nil {
		return nil, xerrors.Errorf("failed to create LRU cache for store %q: %w", name, err)
	}

	fileStore.cache = lruCache
	return fileStore, nil
}

// Release releases resources and removes the cache files
func (fileStore *FileStore) Release() {
	fileStore.mutex.Lock()
	defer fileStore.mutex.Unlock()

	fileStore.cache.Purge()
	fileStore.totalSize = 0

	os.RemoveAll(fileStore.rootPath)
}

// GetName returns the name of the store
func (fileStore *FileStore) GetName() string {
	return fileStore.name
}

// GetRootPath returns the root directory of the store
func (fileStore *FileStore) GetRootPath() string {
	return fileStore.rootPath
}

// GetTotalEntries returns the number of entries in the store
func (fileStore *FileStore) GetTotalEntries() int {
	fileStore.mutex.Lock()
	defer fileStore.mutex.Unlock()

	return fileStore.cache.Len()
}

// GetEntryKeys returns all entry keys
func (fileStore *FileStore) GetEntryKeys() []string {
	fileStore.mutex.Lock()
	defer fileStore.mutex.Unlock()

	keys := []string{}
	for _, key := range fileStore.cache.Keys() {
		if strkey, ok := key.(string); ok {
			keys = append(keys, strkey)
		}
	}
	return keys
}

// GetPersistedSize returns the exact byte size of the persisted entries
func (fileStore *FileStore) GetPersistedSize() (int64, error) {
	fileStore.mutex.Lock()
	defer fileStore.mutex.Unlock()

	return fileStore.totalSize, nil
}

// CreateEntry persists a resource under the given key
func (fileStore *FileStore) CreateEntry(key string, res *resource.CachedResource) error {
	data, err := encodeResource(res)
	if err != nil {
		return xerrors.Errorf("failed to encode resource for key %q: %w", key, err)
	}

	filePath := utils.JoinPath(fileStore.rootPath, utils.MakeHash(key))
	err = os.WriteFile(filePath, data, 0666)
	if err != nil {
		return xerrors.Errorf("failed to write cache file %s: %w", filePath, err)
	}

	entry := &fileStoreEntry{
		key:      key,
		filePath: filePath,
		size:     int64(len(data)),
	}

	fileStore.mutex.Lock()
	defer fileStore.mutex.Unlock()

	// replacing an entry does not fire the evict callback
	if previous, ok := fileStore.cache.Peek(key); ok {
		if previousEntry, ok := previous.(*fileStoreEntry); ok {
			fileStore.totalSize -= previousEntry.size
		}
	}

	fileStore.cache.Add(key, entry)
	fileStore.totalSize += entry.size
	return nil
}

// HasEntry checks if an entry for the given key is present
func (fileStore *FileStore) HasEntry(key string) bool {
	fileStore.mutex.Lock()
	defer fileStore.mutex.Unlock()

	return fileStore.cache.Contains(key)
}

// GetEntry reads back the resource for the given key, nil if not present
func (fileStore *FileStore) GetEntry(key string) (*resource.CachedResource, error) {
	fileStore.mutex.Lock()
	entry, ok := fileStore.cache.Get(key)
	fileStore.mutex.Unlock()

	if !ok {
		return nil, nil
	}

	fileEntry, ok := entry.(*fileStoreEntry)
	if !ok {
		return nil, nil
	}

	data, err := os.ReadFile(fileEntry.filePath)
	if err != nil {
		return nil, xerrors.Errorf("failed to read cache file %s: %w", fileEntry.filePath, err)
	}

	res, err := decodeResource(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode cache file %s: %w", fileEntry.filePath, err)
	}

	return res, nil
}

// DeleteEntry deletes the entry for the given key
func (fileStore *FileStore) DeleteEntry(key string) {
	fileStore.mutex.Lock()
	defer fileStore.mutex.Unlock()

	fileStore.cache.Remove(key)
}

// DeleteAllEntries deletes all entries
func (fileStore *FileStore) DeleteAllEntries() {
	fileStore.mutex.Lock()
	defer fileStore.mutex.Unlock()

	fileStore.cache.Purge()
	fileStore.totalSize = 0
}

// onEvicted runs while the caller holds the store mutex
func (fileStore *FileStore) onEvicted(key interface{}, entry interface{}) {
	fileEntry, ok := entry.(*fileStoreEntry)
	if !ok {
		return
	}

	fileStore.totalSize -= fileEntry.size

	err := os.Remove(fileEntry.filePath)
	if err != nil && !os.IsNotExist(err) {
		log.WithFields(log.Fields{
			"package":  "store",
			"struct":   "FileStore",
			"function": "onEvicted",
		}).Errorf("failed to remove cache file %s: %v", fileEntry.filePath, err)
	}
}
