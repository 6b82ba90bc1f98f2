package report

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/pageseeder/webcache-common/estimate"
)

// FootprintReporter publishes the estimated footprint of registered caches
// as Prometheus gauges. It owns a private registry and refreshes the gauges
// only when Update is called, so no background thread runs here; call it
// from the embedding process, e.g. on a scrape or a timer it owns.
type FootprintReporter struct {
	estimator *estimate.SizeEstimator

	registry       *prometheus.Registry
	residentBytes  *prometheus.GaugeVec
	persistedBytes *prometheus.GaugeVec
	entries        *prometheus.GaugeVec

	residentCaches  map[string]estimate.Cache
	persistedCaches map[string]estimate.PersistedCache
	mutex           sync.Mutex
}

// NewFootprintReporter creates a new FootprintReporter on the given estimator
func NewFootprintReporter(estimator *estimate.SizeEstimator) *FootprintReporter {
	registry := prometheus.NewRegistry()

	residentBytes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "webcache_resident_bytes",
		Help: "Estimated resident byte size per cache",
	}, []string{"cache"})

	persistedBytes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "webcache_persisted_bytes",
		Help: "Persisted byte size per cache",
	}, []string{"cache"})

	entries := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "webcache_entries",
		Help: "Number of entries per cache and tier",
	}, []string{"cache", "tier"})

	registry.MustRegister(residentBytes, persistedBytes, entries)

	return &FootprintReporter{
		estimator: estimator,

		registry:       registry,
		residentBytes:  residentBytes,
		persistedBytes: persistedBytes,
		entries:        entries,

		residentCaches:  map[string]estimate.Cache{},
		persistedCaches: map[string]estimate.PersistedCache{},
	}
}

// AddResidentCache registers a resident cache for reporting
func (reporter *FootprintReporter) AddResidentCache(cache estimate.Cache) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	reporter.residentCaches[cache.GetName()] = cache
}

// AddPersistedCache registers a persisted cache for reporting
func (reporter *FootprintReporter) AddPersistedCache(cache estimate.PersistedCache) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	reporter.persistedCaches[cache.GetName()] = cache
}

// Update refreshes the gauges from the estimator
func (reporter *FootprintReporter) Update() {
	logger := log.WithFields(log.Fields{
		"package":  "report",
		"struct":   "FootprintReporter",
		"function": "Update",
	})

	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	for name, cache := range reporter.residentCaches {
		size := reporter.estimator.GetResidentSize(cache)
		reporter.residentBytes.WithLabelValues(name).Set(float64(size))
		reporter.entries.WithLabelValues(name, estimate.TierResident.String()).Set(float64(cache.GetTotalEntries()))

		logger.Debugf("cache %q holds an estimated %d resident bytes", name, size)
	}

	for name, cache := range reporter.persistedCaches {
		size := reporter.estimator.GetPersistedSize(cache)
		reporter.persistedBytes.WithLabelValues(name).Set(float64(size))
		reporter.entries.WithLabelValues(name, estimate.TierPersisted.String()).Set(float64(cache.GetTotalEntries()))

		logger.Debugf("cache %q holds %d persisted bytes", name, size)
	}
}

// GetRegistry returns the registry holding the footprint gauges
func (reporter *FootprintReporter) GetRegistry() *prometheus.Registry {
	return reporter.registry
}

// Handler returns an HTTP handler exposing the footprint gauges.
// The gauges are refreshed on every scrape.
func (reporter *FootprintReporter) Handler() http.Handler {
	metricsHandler := promhttp.HandlerFor(reporter.registry, promhttp.HandlerOpts{})

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		reporter.Update()
		metricsHandler.ServeHTTP(writer, request)
	})
}
