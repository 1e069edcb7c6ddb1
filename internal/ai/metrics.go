package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess       = "success"
	statusError         = "error"
	statusTimeout       = "timeout"
	statusEmptyResponse = "error_empty_response"
	statusFiltered      = "error_content_filter"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "npc_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "npc_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "npc_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.ExponentialBuckets(64, 2, 12), // 64 ... 131072
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "npc_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(50, 50, 20), // 50, 100, ..., 1000
		},
		[]string{"model"},
	)
)

func observeRequest(model, status string, seconds float64) {
	aiRequestsTotal.With(prometheus.Labels{"model": model, "status": status}).Inc()
	if status == statusSuccess {
		aiRequestDuration.With(prometheus.Labels{"model": model}).Observe(seconds)
	}
}

// observeUsage пишет метрики токенов. Если провайдер не вернул usage, промпт оценивается через tiktoken.
func observeUsage(model, prompt string, promptTokens, completionTokens int) {
	if promptTokens <= 0 {
		promptTokens = EstimateTokens(model, prompt)
	}
	aiPromptTokens.With(prometheus.Labels{"model": model}).Observe(float64(promptTokens))
	if completionTokens > 0 {
		aiCompletionTokens.With(prometheus.Labels{"model": model}).Observe(float64(completionTokens))
	}
}
