// Package instrument holds the bot's Prometheus collectors.
package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream service labels.
const (
	ServiceMetrics  = "metrics"
	ServiceChart    = "chart"
	ServiceRegistry = "code_registry"
	ServiceTelegram = "telegram"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aesthetic_doctor_bot_build_info", Help: "Build information of the bot.",
	}, []string{"version", "env"})

	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aesthetic_doctor_bot_commands_total", Help: "Commands handled, by command.",
	}, []string{"command"})
	MetricsReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aesthetic_doctor_bot_metrics_replies_total", Help: "Metrics replies sent, by format.",
	}, []string{"format"})
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aesthetic_doctor_bot_upstream_failures_total", Help: "Failed calls to external services.",
	}, []string{"service"})

	WizardOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aesthetic_doctor_bot_wizard_outcomes_total", Help: "Completed activation code wizards, by outcome.",
	}, []string{"outcome"})
	CodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aesthetic_doctor_bot_codes_issued_total", Help: "Activation codes handed out.",
	})
)
