package inspection

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline outcomes by reason.
type Metrics struct {
	requests *prometheus.CounterVec
	rows     prometheus.Histogram
}

// NewMetrics creates and registers the collectors on reg. A nil reg leaves
// them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthcheck_detail_requests_total",
			Help: "Health check detail requests by outcome reason.",
		}, []string{"reason"}),
		rows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthcheck_detail_rows",
			Help:    "Rows parsed per successful request.",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.rows)
	}
	return m
}

func (m *Metrics) observe(out Outcome) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(out.Reason)).Inc()
	if out.Reason == ReasonOK {
		m.rows.Observe(float64(len(out.Rows)))
	}
}
