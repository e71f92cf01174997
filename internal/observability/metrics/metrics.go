package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for the request path and the scheduled jobs. All
// observe methods are nil-safe so wiring stays optional in tests.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	messagesTotal      *prometheus.CounterVec
	remindersSent      *prometheus.CounterVec
	conversationsArchd prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "status"}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total chat messages sent",
		}, []string{"sender"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "jobs",
			Name:      "reminders_sent_total",
			Help:      "Total reminder notifications created",
		}, []string{"class"}),
		conversationsArchd: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "jobs",
			Name:      "conversations_archived_total",
			Help:      "Total conversations auto-archived for idleness",
		}),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.messagesTotal, m.remindersSent, m.conversationsArchd)
	return m
}

func (m *Metrics) ObserveRequest(method, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, status).Inc()
}

func (m *Metrics) ObserveMessage(sender string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(sender).Inc()
}

func (m *Metrics) ObserveReminders(class string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.remindersSent.WithLabelValues(class).Add(float64(n))
}

func (m *Metrics) ObserveArchived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.conversationsArchd.Add(float64(n))
}
