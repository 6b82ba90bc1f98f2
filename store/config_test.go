package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	t.Run("test ConfigFromYAML", testConfigFromYAML)
	t.Run("test ConfigValidation", testConfigValidation)
	t.Run("test NewStores", testNewStores)
}

func testConfigFromYAML(t *testing.T) {
	yamlBytes := []byte(`
caches:
  - name: pages
    backend: memory
    entry_cap: 500
  - name: archive
    backend: leveldb
    path: /var/cache/archive
`)

	config, err := NewConfigFromYAML(yamlBytes)
	assert.NoError(t, err)
	assert.Len(t, config.Caches, 2)

	assert.Equal(t, "pages", config.Caches[0].Name)
	assert.Equal(t, BackendMemory, config.Caches[0].Backend)
	assert.Equal(t, 500, config.Caches[0].EntryCap)

	assert.Equal(t, "archive", config.Caches[1].Name)
	assert.Equal(t, BackendLevelDB, config.Caches[1].Backend)
	assert.Equal(t, "/var/cache/archive", config.Caches[1].Path)
}

func testConfigValidation(t *testing.T) {
	// unknown backend
	_, err := NewConfigFromYAML([]byte(`
caches:
  - name: pages
    backend: redis
`))
	assert.Error(t, err)

	// duplicate names
	_, err = NewConfigFromYAML([]byte(`
caches:
  - name: pages
    backend: memory
  - name: pages
    backend: memory
`))
	assert.Error(t, err)

	// file backend with no path
	_, err = NewConfigFromYAML([]byte(`
caches:
  - name: pages
    backend: file
`))
	assert.Error(t, err)

	// leveldb does not evict, an entry cap is a config defect
	_, err = NewConfigFromYAML([]byte(`
caches:
  - name: archive
    backend: leveldb
    path: /var/cache/archive
    entry_cap: 100
`))
	assert.Error(t, err)
}

func testNewStores(t *testing.T) {
	config := &Config{
		Caches: []CacheConfig{
			{
				Name:     "pages",
				Backend:  BackendMemory,
				EntryCap: 100,
			},
			{
				Name:    "files",
				Backend: BackendFile,
				Path:    t.TempDir(),
			},
			{
				Name:    "archive",
				Backend: BackendLevelDB,
				Path:    fmt.Sprintf("%s/db", t.TempDir()),
			},
		},
	}

	stores, err := config.NewStores()
	assert.NoError(t, err)
	assert.Len(t, stores, 3)

	defer func() {
		for _, createdStore := range stores {
			createdStore.Release()
		}
	}()

	assert.IsType(t, &MemoryStore{}, stores["pages"])
	assert.IsType(t, &FileStore{}, stores["files"])
	assert.IsType(t, &LevelDBStore{}, stores["archive"])

	// persisted backends report their footprint
	_, ok := stores["files"].(PersistedStore)
	assert.True(t, ok)
	_, ok = stores["archive"].(PersistedStore)
	assert.True(t, ok)
}
