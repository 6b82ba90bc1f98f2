package store

import (
	"github.com/pageseeder/webcache-common/resource"
)

// Store is a named cache of responses keyed by string.
// It owns the lifecycle of its resources; the resources themselves are
// immutable and freely shared with readers.
type Store interface {
	Release()

	GetName() string
	GetTotalEntries() int
	GetEntryKeys() []string

	CreateEntry(key string, res *resource.CachedResource) error
	HasEntry(key string) bool
	GetEntry(key string) (*resource.CachedResource, error)
	DeleteEntry(key string)
	DeleteAllEntries()
}

// PersistedStore is a Store on durable storage that reports its exact byte
// footprint from its own bookkeeping.
type PersistedStore interface {
	Store

	GetPersistedSize() (int64, error)
}
