package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropweather_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cropweather_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropweather_llm_requests_total",
			Help: "Total number of chat completion calls by outcome.",
		},
		[]string{"status"},
	)

	LLMRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cropweather_llm_retries_total",
			Help: "Total number of rate-limited completion attempts that were retried.",
		},
	)

	ChatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropweather_chat_turns_total",
			Help: "Total number of completed chat turns by outcome.",
		},
		[]string{"outcome"},
	)

	InsightParseFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cropweather_insight_parse_failures_total",
			Help: "Total number of insight lines that failed to parse.",
		},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropweather_weather_analyses_total",
			Help: "Total number of weather analyses by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LLMRequestsTotal,
		LLMRetriesTotal,
		ChatTurnsTotal,
		InsightParseFailuresTotal,
		AnalysesTotal,
	)
}
