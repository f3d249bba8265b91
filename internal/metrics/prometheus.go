package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_style_analyses_total",
			Help: "Total number of style analyses by outcome",
		},
		[]string{"status"},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_generations_total",
			Help: "Total number of generated posts by outcome and template",
		},
		[]string{"status", "template"},
	)

	GeneratedWords = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postcraft_generated_words",
			Help:    "Word count of generated posts per requested length",
			Buckets: []float64{25, 50, 100, 150, 200, 300, 400, 600},
		},
		[]string{"length"},
	)

	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_llm_requests_total",
			Help: "Total LLM completion calls",
		},
		[]string{"provider", "operation", "status"},
	)

	LLMDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postcraft_llm_duration_seconds",
			Help:    "LLM completion latency in seconds, retries included",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"provider", "operation"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_analysis_validation_failures_total",
			Help: "Analysis responses rejected by the validator, by offending field",
		},
		[]string{"field"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_cache_hits_total",
			Help: "Total state cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_cache_misses_total",
			Help: "Total state cache misses",
		},
		[]string{"cache_type"},
	)

	BusyRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_busy_rejections_total",
			Help: "Requests refused because the same operation was already running for the user",
		},
		[]string{"operation"},
	)

	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postcraft_auth_events_total",
			Help: "Authentication events",
		},
		[]string{"event"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AnalysesTotal)
		prometheus.MustRegister(GenerationsTotal)
		prometheus.MustRegister(GeneratedWords)
		prometheus.MustRegister(LLMRequests)
		prometheus.MustRegister(LLMDuration)
		prometheus.MustRegister(LLMTokensUsed)
		prometheus.MustRegister(ValidationFailures)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
		prometheus.MustRegister(BusyRejections)
		prometheus.MustRegister(AuthEvents)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
