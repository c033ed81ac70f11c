package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	IdeasAnnotatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideiamap_ideas_annotated_total",
			Help: "Count of ideas annotated, by sentiment label and source",
		},
		[]string{"sentiment", "source"},
	)

	GeocodeLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideiamap_geocode_lookups_total",
			Help: "Count of geocode network lookups, by outcome",
		},
		[]string{"outcome"},
	)

	GeocodeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideiamap_geocode_cache_total",
			Help: "Count of geocode cache reads, by result",
		},
		[]string{"result"},
	)

	ExportRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideiamap_export_records_total",
			Help: "Count of exported records, by sink and status",
		},
		[]string{"sink", "status"},
	)

	registerOnce sync.Once
)

// InitMetrics registers the collectors with the default registry.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(IdeasAnnotatedTotal)
		prometheus.MustRegister(GeocodeLookupsTotal)
		prometheus.MustRegister(GeocodeCacheTotal)
		prometheus.MustRegister(ExportRecordsTotal)
	})
}
