package estimate

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Tier identifies the storage tier a footprint sample belongs to
type Tier int

const (
	// TierResident is the portion of a cache held in memory
	TierResident Tier = iota
	// TierPersisted is the portion of a cache held in durable storage
	TierPersisted
)

// String returns the name of the tier
func (tier Tier) String() string {
	switch tier {
	case TierResident:
		return "resident"
	case TierPersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

const (
	// a new resident sample is taken when the element count exceeds the
	// sampled count times this factor
	residentResampleFactor = 1.5
	// persisted measurements are cheap enough to tolerate a larger lag
	persistedResampleFactor = 2.0
)

// MeasureFunc measures the current byte size of a cache for one tier
type MeasureFunc func() int64

// SizeEstimator estimates how many bytes named caches occupy per storage
// tier, extrapolating from previously measured samples instead of
// remeasuring on every query. One estimator is shared by all caches of a
// process; construct it once and pass it to every cache-owning component.
type SizeEstimator struct {
	residentSamples  map[string]Sample
	persistedSamples map[string]Sample
	mutex            sync.Mutex

	// collapses concurrent remeasurements of the same (tier, cache)
	measureGroup singleflight.Group
}

// NewSizeEstimator creates a new SizeEstimator
func NewSizeEstimator() *SizeEstimator {
	return &SizeEstimator{
		residentSamples:  map[string]Sample{},
		persistedSamples: map[string]Sample{},
	}
}

// CheckSample decides whether a fresh measurement is needed for the given
// cache and tier, and takes one if so. A measurement is triggered when no
// sample exists, when the element count grew past the tier's resample
// factor, or, for the resident tier, when the previous sample never measured
// any bytes. Returns whether a new sample was actually computed.
func (estimator *SizeEstimator) CheckSample(tier Tier, name string, elements int, measure MeasureFunc) bool {
	sample, ok := estimator.getSample(tier, name)
	if ok && !estimator.needsResample(tier, sample, elements) {
		return false
	}

	if elements <= 0 {
		// nothing to measure
		estimator.putSample(tier, name, NewSample(0, 0))
		return false
	}

	bytesize := estimator.measureOnce(tier, name, measure)
	estimator.putSample(tier, name, NewSample(elements, bytesize))

	log.WithFields(log.Fields{
		"package":  "estimate",
		"struct":   "SizeEstimator",
		"function": "CheckSample",
	}).Debugf("resampled %s tier of cache %q: %d elements, %d bytes", tier, name, elements, bytesize)

	return true
}

// GetEstimate returns the estimated byte size of the named cache for the
// given tier, taking a fresh sample first if one is due. This never fails;
// measurement problems degrade to approximation, not errors.
func (estimator *SizeEstimator) GetEstimate(tier Tier, name string, elements int, measure MeasureFunc) int64 {
	estimator.CheckSample(tier, name, elements, measure)
	return estimator.EstimateOnly(tier, name, elements)
}

// EstimateOnly extrapolates from the current sample without ever
// remeasuring. Returns -1 when no sample exists for the cache and tier.
func (estimator *SizeEstimator) EstimateOnly(tier Tier, name string, elements int) int64 {
	sample, ok := estimator.getSample(tier, name)
	if !ok {
		return -1
	}
	return sample.Estimate(elements)
}

func (estimator *SizeEstimator) needsResample(tier Tier, sample Sample, elements int) bool {
	factor := persistedResampleFactor
	if tier == TierResident {
		factor = residentResampleFactor

		// a zero-byte resident sample means the measurement never
		// succeeded, retry even without growth
		if sample.GetByteSize() == 0 {
			return true
		}
	}

	return float64(elements) > float64(sample.GetElements())*factor
}

// measureOnce runs the measurement, letting concurrent callers for the same
// (tier, cache) share one run. The subsequent sample write is
// last-writer-wins; duplicate samples are harmless.
func (estimator *SizeEstimator) measureOnce(tier Tier, name string, measure MeasureFunc) int64 {
	key := fmt.Sprintf("%d:%s", tier, name)
	bytesize, _, _ := estimator.measureGroup.Do(key, func() (interface{}, error) {
		return measure(), nil
	})
	return bytesize.(int64)
}

func (estimator *SizeEstimator) getSample(tier Tier, name string) (Sample, bool) {
	estimator.mutex.Lock()
	defer estimator.mutex.Unlock()

	sample, ok := estimator.samplesFor(tier)[name]
	return sample, ok
}

func (estimator *SizeEstimator) putSample(tier Tier, name string, sample Sample) {
	estimator.mutex.Lock()
	defer estimator.mutex.Unlock()

	estimator.samplesFor(tier)[name] = sample
}

func (estimator *SizeEstimator) samplesFor(tier Tier) map[string]Sample {
	if tier == TierPersisted {
		return estimator.persistedSamples
	}
	return estimator.residentSamples
}
