// internal/metrics/metrics.go

// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CampaignSends counts processed campaign contacts by outcome: sent, failed, skipped.
	CampaignSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_sends_total",
			Help: "Campaign contacts processed, by outcome",
		},
		[]string{"outcome"},
	)

	// CampaignRuns counts finished runs by result: completed, stopped, empty.
	CampaignRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_runs_total",
			Help: "Finished campaign runs, by result",
		},
		[]string{"result"},
	)

	CampaignActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campaign_active",
			Help: "1 while a campaign run is executing",
		},
	)

	WebhookMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_messages_total",
			Help: "Inbound webhook messages, by message type",
		},
		[]string{"type"},
	)

	WhatsAppRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_requests_total",
			Help: "Graph API calls, by operation and result",
		},
		[]string{"operation", "result"},
	)

	// CircuitBreakerState is 0=closed, 1=half-open, 2=open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	HousekeepingDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "housekeeping_deleted_messages_total",
			Help: "Messages deleted by the database size housekeeping job",
		},
	)

	ReplyJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawing_reply_jobs_total",
			Help: "Drawing auto-reply jobs, by result",
		},
		[]string{"result"},
	)
)
