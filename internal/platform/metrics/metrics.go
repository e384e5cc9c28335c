package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	UsersRegistered   prometheus.Counter
	LoginAttempts     *prometheus.CounterVec
	CodesIssued       *prometheus.CounterVec
	CodeVerifications *prometheus.CounterVec
	PasswordResets    prometheus.Counter
	MailDispatched    *prometheus.CounterVec
	TaskOperations    *prometheus.CounterVec
	RequestLatency    *prometheus.HistogramVec
}

// New creates the metrics on a private registry so tests can build as many as
// they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "campus_users_registered_total",
			Help: "Total number of accounts created",
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		CodesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_verification_codes_issued_total",
			Help: "Verification codes issued by purpose",
		}, []string{"purpose"}),
		CodeVerifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_verification_checks_total",
			Help: "Verification code checks by purpose and outcome",
		}, []string{"purpose", "outcome"}),
		PasswordResets: f.NewCounter(prometheus.CounterOpts{
			Name: "campus_password_resets_total",
			Help: "Completed password resets",
		}),
		MailDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_mail_dispatched_total",
			Help: "Verification mails handed to the mailer by outcome",
		}, []string{"outcome"}),
		TaskOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_task_operations_total",
			Help: "Task CRUD operations by kind",
		}, []string{"operation"}),
		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncUsersRegistered() {
	if m == nil {
		return
	}
	m.UsersRegistered.Inc()
}

func (m *Metrics) IncLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCodeIssued(purpose string) {
	if m == nil {
		return
	}
	m.CodesIssued.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncCodeCheck(purpose, outcome string) {
	if m == nil {
		return
	}
	m.CodeVerifications.WithLabelValues(purpose, outcome).Inc()
}

func (m *Metrics) IncPasswordReset() {
	if m == nil {
		return
	}
	m.PasswordResets.Inc()
}

func (m *Metrics) IncMail(outcome string) {
	if m == nil {
		return
	}
	m.MailDispatched.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncTaskOperation(op string) {
	if m == nil {
		return
	}
	m.TaskOperations.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, status).Observe(seconds)
}
