package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messageProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "warden_message_duration_sec",
	Help: "Total duration of moderation pipeline message processing",
})

var messageProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_messages_processed",
	Help: "Number of messages processed, by outcome",
}, []string{"outcome"})

var violationCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_violations",
	Help: "Number of confirmed policy violations",
})

var muteEngagedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_mutes_engaged",
	Help: "Number of mute sanctions applied",
})

var muteReleasedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_mutes_released",
	Help: "Number of mute sanctions released",
})

var enforcementErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_enforcement_errors",
	Help: "Number of failed gateway enforcement actions, by action",
}, []string{"action"})

var ledgerErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_ledger_errors",
	Help: "Number of rating ledger store failures",
})
