package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	casesOpenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "communitybot_enforcement_cases_opened_total",
		Help: "Total number of enforcement cases opened against non-compliant posts",
	})
	casesClosedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "communitybot_enforcement_cases_closed_total",
		Help: "Total number of enforcement cases closed, by reason",
	}, []string{"reason"})
	actionsExecutedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "communitybot_enforcement_actions_total",
		Help: "Total number of enforcement steps executed, by action",
	}, []string{"action"})
	actionFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "communitybot_enforcement_action_failures_total",
		Help: "Total number of enforcement steps that failed at the platform and will be retried",
	})
	postsScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "communitybot_posts_scanned_total",
		Help: "Total number of posts inspected by the tag scanner",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(casesOpenedTotal, casesClosedTotal, actionsExecutedTotal, actionFailuresTotal, postsScannedTotal)
}

// IncCaseOpened increments the opened cases counter.
func IncCaseOpened() { casesOpenedTotal.Inc() }

// IncCaseClosed increments the closed cases counter for a reason ("compliant" or "completed").
func IncCaseClosed(reason string) { casesClosedTotal.WithLabelValues(reason).Inc() }

// IncActionExecuted increments the executed actions counter for an action kind.
func IncActionExecuted(action string) { actionsExecutedTotal.WithLabelValues(action).Inc() }

// IncActionFailure increments the failed actions counter.
func IncActionFailure() { actionFailuresTotal.Inc() }

// AddPostsScanned adds to the scanned posts counter.
func AddPostsScanned(n int) { postsScannedTotal.Add(float64(n)) }
