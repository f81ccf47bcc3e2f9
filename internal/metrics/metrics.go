package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siniestros_searches_total",
		Help: "Total searches by outcome status",
	}, []string{"status"})
	SearchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "siniestros_search_duration_ms",
		Help:    "Search duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	StaleResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "siniestros_stale_results_total",
		Help: "Searches that finished after a newer search of the same session",
	})
	ResourceFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siniestros_resource_fetch_total",
		Help: "Resource fetches by kind and result (found, absent, error)",
	}, []string{"kind", "result"})
	ResourceFetchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "siniestros_resource_fetch_duration_ms",
		Help:    "Resource fetch duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"kind"})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "siniestros_active_sessions",
		Help: "Sessions held in the session registry",
	})
)

func init() {
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDurationMs)
	prometheus.MustRegister(StaleResultsTotal)
	prometheus.MustRegister(ResourceFetchTotal)
	prometheus.MustRegister(ResourceFetchDurationMs)
	prometheus.MustRegister(ActiveSessions)
}

// FetchObserver ghi metrics cho mỗi lần tải resource của partition index.
type FetchObserver struct{}

// ObserveFetch implements index.Observer.
func (FetchObserver) ObserveFetch(kind string, found bool, err error, d time.Duration) {
	result := "absent"
	switch {
	case err != nil:
		result = "error"
	case found:
		result = "found"
	}
	ResourceFetchTotal.WithLabelValues(kind, result).Inc()
	ResourceFetchDurationMs.WithLabelValues(kind).Observe(float64(d.Milliseconds()))
}

// ObserveSearch ghi nhận một lượt tìm kiếm
func ObserveSearch(status string, d time.Duration, stale bool) {
	SearchesTotal.WithLabelValues(status).Inc()
	SearchDurationMs.Observe(float64(d.Milliseconds()))
	if stale {
		StaleResultsTotal.Inc()
	}
}

// Handler trả về handler cho /metrics
func Handler() http.Handler { return promhttp.Handler() }
