package store

import (
	"sync"

	lrucache "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/pageseeder/webcache-common/resource"
)

// MemoryStore implements Store in memory, the resident tier of a cache.
// Entries are evicted least-recently-used once the entry cap is reached.
type MemoryStore struct {
	name     string
	entryCap int
	cache    *lrucache.Cache
	mutex    sync.Mutex
}

// NewMemoryStore creates a new MemoryStore holding up to entryCap entries
func NewMemoryStore(name string, entryCap int) (*MemoryStore, error) {
	memoryStore := &MemoryStore{
		name:     name,
		entryCap: entryCap,
	}

	lruCache, err := lrucache.NewWithEvict(entryCap, memoryStore.onEvicted)
	if err != nil {
		return nil, xerrors.Errorf("failed to create LRU cache for store %q: %w", name, err)
	}

	memoryStore.cache = lruCache
	return memoryStore, nil
}

// Release releases resources
func (memoryStore *MemoryStore) Release() {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	memoryStore.cache.Purge()
}

// GetName returns the name of the store
func (memoryStore *MemoryStore) GetName() string {
	return memoryStore.name
}

// GetEntryCap returns the entry cap of the store
func (memoryStore *MemoryStore) GetEntryCap() int {
	return memoryStore.entryCap
}

// GetTotalEntries returns the number of entries in the store
func (memoryStore *MemoryStore) GetTotalEntries() int {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	return memoryStore.cache.Len()
}

// GetEntryKeys returns all entry keys
func (memoryStore *MemoryStore) GetEntryKeys() []string {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	keys := []string{}
	for _, key := range memoryStore.cache.Keys() {
		if strkey, ok := key.(string); ok {
			keys = append(keys, strkey)
		}
	}
	return keys
}

// GetEntries returns a snapshot of the resources currently in the store,
// for footprint measurement. Reading the snapshot does not touch recency.
func (memoryStore *MemoryStore) GetEntries() []interface{} {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	entries := []interface{}{}
	for _, key := range memoryStore.cache.Keys() {
		if entry, ok := memoryStore.cache.Peek(key); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// CreateEntry adds a resource under the given key
func (memoryStore *MemoryStore) CreateEntry(key string, res *resource.CachedResource) error {
	if res == nil {
		return xerrors.Errorf("cannot cache a nil resource under key %q", key)
	}

	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	memoryStore.cache.Add(key, res)
	return nil
}

// HasEntry checks if an entry for the given key is present
func (memoryStore *MemoryStore) HasEntry(key string) bool {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	return memoryStore.cache.Contains(key)
}

// GetEntry returns the resource for the given key, nil if not present
func (memoryStore *MemoryStore) GetEntry(key string) (*resource.CachedResource, error) {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	if entry, ok := memoryStore.cache.Get(key); ok {
		if res, ok := entry.(*resource.CachedResource); ok {
			return res, nil
		}
	}
	return nil, nil
}

// DeleteEntry deletes the entry for the given key
func (memoryStore *MemoryStore) DeleteEntry(key string) {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	memoryStore.cache.Remove(key)
}

// DeleteAllEntries deletes all entries
func (memoryStore *MemoryStore) DeleteAllEntries() {
	memoryStore.mutex.Lock()
	defer memoryStore.mutex.Unlock()

	memoryStore.cache.Purge()
}

func (memoryStore *MemoryStore) onEvicted(key interface{}, entry interface{}) {
	log.WithFields(log.Fields{
		"package":  "store",
		"struct":   "MemoryStore",
		"function": "onEvicted",
	}).Debugf("evicted entry %v from store %q", key, memoryStore.name)
}
