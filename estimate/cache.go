package estimate

import (
	log "github.com/sirupsen/logrus"
)

// Cache is the view of a resident cache the estimator measures
type Cache interface {
	GetName() string
	GetTotalEntries() int

	// GetEntries returns a best-effort snapshot of the current entries
	GetEntries() []interface{}
}

// PersistedCache is the view of a persisted cache the estimator measures.
// The persisted byte size is whatever the store reports, trusted as exact.
type PersistedCache interface {
	GetName() string
	GetTotalEntries() int

	GetPersistedSize() (int64, error)
}

// GetResidentSize returns the estimated resident byte size of the cache,
// resampling through the graph walk when the sample is stale.
func (estimator *SizeEstimator) GetResidentSize(cache Cache) int64 {
	return estimator.GetEstimate(TierResident, cache.GetName(), cache.GetTotalEntries(), func() int64 {
		return MeasureAll(cache.GetEntries())
	})
}

// GetPersistedSize returns the estimated persisted byte size of the cache,
// asking the store for its exact footprint when the sample is stale.
func (estimator *SizeEstimator) GetPersistedSize(cache PersistedCache) int64 {
	return estimator.GetEstimate(TierPersisted, cache.GetName(), cache.GetTotalEntries(), func() int64 {
		size, err := cache.GetPersistedSize()
		if err != nil {
			logger := log.WithFields(log.Fields{
				"package":  "estimate",
				"struct":   "SizeEstimator",
				"function": "GetPersistedSize",
			})
			logger.Errorf("failed to read persisted size of cache %q: %v", cache.GetName(), err)
			return 0
		}
		return size
	})
}
