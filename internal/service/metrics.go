package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the business counters exported on /metrics. A nil *Metrics
// is valid and records nothing, which keeps service tests free of registries.
type Metrics struct {
	logins   *prometheus.CounterVec
	posts    *prometheus.CounterVec
	comments prometheus.Counter
	visits   prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "logins_total",
			Help:      "Admin sign-in attempts by method and result.",
		}, []string{"method", "result"}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "post_changes_total",
			Help:      "Posts created, updated and deleted.",
		}, []string{"action"}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "comments_created_total",
			Help:      "Comments submitted by visitors.",
		}),
		visits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "visits_recorded_total",
			Help:      "Visits added to the daily statistics.",
		}),
	}
	reg.MustRegister(m.logins, m.posts, m.comments, m.visits)
	return m
}

func (m *Metrics) login(method string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.logins.WithLabelValues(method, result).Inc()
}

func (m *Metrics) post(action string) {
	if m != nil {
		m.posts.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) comment() {
	if m != nil {
		m.comments.Inc()
	}
}

func (m *Metrics) visit() {
	if m != nil {
		m.visits.Inc()
	}
}
