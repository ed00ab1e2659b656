package metrics

import "github.com/prometheus/client_golang/prometheus"

// FeedMetrics exposes counters/histograms for upstream feed polling.
type FeedMetrics struct {
	fetchTotal     *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	staleDiscarded prometheus.Counter
	snapshotSize   prometheus.Gauge
}

func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	m := &FeedMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "feed",
			Name:      "fetch_total",
			Help:      "Total upstream feed fetches by outcome",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "feed",
			Name:      "fetch_latency_seconds",
			Help:      "Latency of upstream feed fetches",
			Buckets:   prometheus.DefBuckets,
		}),
		staleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "feed",
			Name:      "stale_discarded_total",
			Help:      "Completed fetches discarded because a newer one was already applied",
		}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dashboard",
			Subsystem: "feed",
			Name:      "snapshot_records",
			Help:      "Records in the currently applied snapshot",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.fetchLatency, m.staleDiscarded, m.snapshotSize)
	return m
}

// ObserveFetch records one completed fetch; outcome is "success" or "failure".
func (m *FeedMetrics) ObserveFetch(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchLatency.Observe(seconds)
}

func (m *FeedMetrics) ObserveStale() {
	if m == nil {
		return
	}
	m.staleDiscarded.Inc()
}

func (m *FeedMetrics) SetSnapshotSize(records int) {
	if m == nil {
		return
	}
	m.snapshotSize.Set(float64(records))
}
