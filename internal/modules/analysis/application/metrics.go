package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the analysis collectors.
type Metrics struct {
	uploadURLs *prometheus.CounterVec
	analyses   *prometheus.CounterVec
	detection  *prometheus.HistogramVec
	lookups    *prometheus.CounterVec
}

// NewMetrics registers the analysis collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		uploadURLs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snaplabel_upload_urls_total",
			Help: "Upload URLs issued, by outcome.",
		}, []string{"outcome"}),
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snaplabel_analyses_total",
			Help: "Analyze requests, by detector and outcome.",
		}, []string{"provider", "outcome"}),
		detection: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snaplabel_label_detection_duration_seconds",
			Help:    "Time spent in the label detector.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snaplabel_result_lookups_total",
			Help: "Result lookups, by cache status.",
		}, []string{"cache"}),
	}
}
