package store

import (
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

const (
	// BackendMemory names the in-memory LRU backend
	BackendMemory = "memory"
	// BackendFile names the file-per-entry backend
	BackendFile = "file"
	// BackendLevelDB names the LevelDB backend
	BackendLevelDB = "leveldb"

	defaultEntryCap = 1000
)

// CacheConfig defines one named cache
type CacheConfig struct {
	Name    string `yaml:"name"`
	Backend string `yaml:"backend"`

	// EntryCap caps the number of entries for the memory and file
	// backends; the leveldb backend does not evict and rejects it
	EntryCap int `yaml:"entry_cap,omitempty"`

	Path string `yaml:"path,omitempty"`
}

// Config defines the caches of a process
type Config struct {
	Caches []CacheConfig `yaml:"caches"`
}

// NewConfigFromYAML creates a Config from YAML bytes
func NewConfigFromYAML(yamlBytes []byte) (*Config, error) {
	config := &Config{}
	err := yaml.Unmarshal(yamlBytes, config)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal YAML config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// NewConfigFromFile creates a Config from a YAML file
func NewConfigFromFile(configPath string) (*Config, error) {
	yamlBytes, err := os.ReadFile(configPath)
	if err != nil {
		return nil, xerrors.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return NewConfigFromYAML(yamlBytes)
}

// Validate checks the config for defects
func (config *Config) Validate() error {
	names := map[string]bool{}
	for _, cacheConfig := range config.Caches {
		if cacheConfig.Name == "" {
			return xerrors.Errorf("cache with no name in config")
		}

		if names[cacheConfig.Name] {
			return xerrors.Errorf("duplicate cache name %q in config", cacheConfig.Name)
		}
		names[cacheConfig.Name] = true

		err := cacheConfig.Validate()
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the cache definition for defects
func (cacheConfig *CacheConfig) Validate() error {
	switch cacheConfig.Backend {
	case BackendMemory:
		// no path needed
	case BackendFile:
		if cacheConfig.Path == "" {
			return xerrors.Errorf("cache %q uses backend %q but defines no path", cacheConfig.Name, cacheConfig.Backend)
		}
	case BackendLevelDB:
		if cacheConfig.Path == "" {
			return xerrors.Errorf("cache %q uses backend %q but defines no path", cacheConfig.Name, cacheConfig.Backend)
		}
		if cacheConfig.EntryCap != 0 {
			return xerrors.Errorf("cache %q defines an entry cap but backend %q does not evict", cacheConfig.Name, cacheConfig.Backend)
		}
	default:
		return xerrors.Errorf("cache %q uses unknown backend %q", cacheConfig.Name, cacheConfig.Backend)
	}

	if cacheConfig.EntryCap < 0 {
		return xerrors.Errorf("cache %q has a negative entry cap", cacheConfig.Name)
	}
	return nil
}

// NewStore creates the store the cache definition describes
func (cacheConfig *CacheConfig) NewStore() (Store, error) {
	entryCap := cacheConfig.EntryCap
	if entryCap == 0 {
		entryCap = defaultEntryCap
	}

	switch cacheConfig.Backend {
	case BackendMemory:
		return NewMemoryStore(cacheConfig.Name, entryCap)
	case BackendFile:
		return NewFileStore(cacheConfig.Name, cacheConfig.Path, entryCap)
	case BackendLevelDB:
		return NewLevelDBStore(cacheConfig.Name, cacheConfig.Path)
	default:
		return nil, xerrors.Errorf("cache %q uses unknown backend %q", cacheConfig.Name, cacheConfig.Backend)
	}
}

// NewStores creates all configured stores, mapped by cache name
func (config *Config) NewStores() (map[string]Store, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	stores := map[string]Store{}
	for _, cacheConfig := range config.Caches {
		newStore, err := cacheConfig.NewStore()
		if err != nil {
			for _, createdStore := range stores {
				createdStore.Release()
			}
			return nil, err
		}
		stores[cacheConfig.Name] = newStore
	}
	return stores, nil
}
