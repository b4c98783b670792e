package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var judgeAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "warden_judge_api_duration_sec",
	Help: "Duration of judge verdict API calls",
})

var judgeAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_judge_api_count",
	Help: "Number of judge verdict API calls, by HTTP status code",
}, []string{"status"})

var openaiAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "warden_openai_api_duration_sec",
	Help: "Duration of OpenAI verdict API calls",
})

var failOpenCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_classifier_fail_open",
	Help: "Number of verdicts which failed open due to backend unavailability",
})

var verdictCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_verdict_cache",
	Help: "Verdict cache lookups, by hit/miss",
}, []string{"outcome"})
