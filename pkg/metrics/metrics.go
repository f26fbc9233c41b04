package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ApprovalMetrics records outcomes of payment approval attempts.
type ApprovalMetrics struct {
	duration *prometheus.HistogramVec
	approved *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewApprovalMetrics registers the approval metrics on the provided registerer.
func NewApprovalMetrics(reg prometheus.Registerer) *ApprovalMetrics {
	if reg == nil {
		return &ApprovalMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_approval_duration_seconds",
		Help:    "Duration of payment approval transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	approved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_approvals_total",
		Help: "Payment approvals committed.",
	}, []string{"method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_approval_rejections_total",
		Help: "Payment approvals rejected, labelled by error code.",
	}, []string{"method", "code"})
	reg.MustRegister(duration, approved, rejected)
	return &ApprovalMetrics{
		duration: duration,
		approved: approved,
		rejected: rejected,
	}
}

// ObserveDuration records how long one approval transaction took.
func (m *ApprovalMetrics) ObserveDuration(method string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncApproved increments the committed-approval counter.
func (m *ApprovalMetrics) IncApproved(method string) {
	if m == nil || m.approved == nil {
		return
	}
	m.approved.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncRejected increments the rejection counter for the given error code.
func (m *ApprovalMetrics) IncRejected(method, code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(method), normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
