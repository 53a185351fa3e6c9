// Package metrics exposes Prometheus collectors for the packet filter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the filter's Prometheus collectors.
type Metrics struct {
	PacketsProcessed prometheus.Counter
	Decisions        *prometheus.CounterVec
	SendErrors       prometheus.Counter
	ReceiveErrors    prometheus.Counter
}

// New registers the filter collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PacketsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "geoblock",
			Name:      "packets_processed_total",
			Help:      "Outbound packets pulled from the interception queue.",
		}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geoblock",
			Name:      "decisions_total",
			Help:      "Per-packet policy decisions by action.",
		}, []string{"action"}),
		SendErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "geoblock",
			Name:      "send_errors_total",
			Help:      "Packets lost because re-injection failed.",
		}),
		ReceiveErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "geoblock",
			Name:      "receive_errors_total",
			Help:      "Receive failures other than shutdown.",
		}),
	}
}

// RegisterCacheSize exposes the country-resolver cache size as a gauge.
func RegisterCacheSize(reg prometheus.Registerer, size func() int) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "geoblock",
		Name:      "country_cache_entries",
		Help:      "Addresses memoized by the country resolver.",
	}, func() float64 { return float64(size()) })
}
