// Package observability holds the service's prometheus instruments.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParseFallbacks counts responses where every parsing strategy failed
	// and synthetic fallback questions were substituted.
	ParseFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_parse_fallbacks_total",
		Help: "Number of LLM responses that exhausted all parsing strategies",
	})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_sessions_started_total",
		Help: "Number of practice sessions started",
	})

	SessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_sessions_completed_total",
		Help: "Number of practice sessions completed, by completion type",
	}, []string{"completion_type"})

	HintReveals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_hint_reveals_total",
		Help: "Number of hint levels revealed across all sessions",
	})
)
