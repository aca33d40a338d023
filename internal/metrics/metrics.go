package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	admissionCheckedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apologyhub_admission_checked_total",
		Help: "Total number of requests evaluated by the admission controller",
	})
	admissionDeniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apologyhub_admission_denied_total",
		Help: "Total number of requests denied by the admission controller",
	})
	botBlockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apologyhub_bot_blocked_total",
		Help: "Total number of requests denied by bot classification",
	})
	autoBlockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apologyhub_auto_blocked_total",
		Help: "Total number of identifiers auto-escalated into a persisted block",
	})
	submissionLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apologyhub_submission_limited_total",
		Help: "Total number of apology submissions rejected by the submission gate",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		admissionCheckedTotal,
		admissionDeniedTotal,
		botBlockedTotal,
		autoBlockedTotal,
		submissionLimitedTotal,
	)
}

// IncAdmissionChecked increments the evaluated requests counter.
func IncAdmissionChecked() { admissionCheckedTotal.Inc() }

// IncAdmissionDenied increments the denied requests counter.
func IncAdmissionDenied() { admissionDeniedTotal.Inc() }

// IncBotBlocked increments the bot denial counter.
func IncBotBlocked() { botBlockedTotal.Inc() }

// IncAutoBlocked increments the auto-escalation counter.
func IncAutoBlocked() { autoBlockedTotal.Inc() }

// IncSubmissionLimited increments the submission gate rejection counter.
func IncSubmissionLimited() { submissionLimitedTotal.Inc() }
