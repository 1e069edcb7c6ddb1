package worldmodel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"npc-server/internal/ai"
	"npc-server/shared/interfaces"
	"npc-server/shared/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var summaryCacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "npc_world_summary_cache_lookups_total",
		Help: "World summary cache lookups by result (hit, miss, error).",
	},
	[]string{"result"},
)

// Builder создает WorldModel. Кэш сводок необязателен.
type Builder struct {
	client        ai.Client
	cache         interfaces.SummaryCache
	model         string
	contextTokens int
	logger        *zap.Logger
}

type BuilderOption func(*Builder)

// WithCache включает кэш сводок. Деградированные сводки в кэш не попадают.
func WithCache(cache interfaces.SummaryCache) BuilderOption {
	return func(b *Builder) {
		b.cache = cache
	}
}

// WithContextLimit включает предупреждение, когда промпт сводки не помещается в контекст модели.
func WithContextLimit(model string, tokens int) BuilderOption {
	return func(b *Builder) {
		b.model = model
		b.contextTokens = tokens
	}
}

func NewBuilder(client ai.Client, logger *zap.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		client: client,
		logger: logger.Named("WorldModelBuilder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CacheKey - ключ кэша сводки: SHA-256 от текста истории.
func CacheKey(storyText string) string {
	sum := sha256.Sum256([]byte(storyText))
	return hex.EncodeToString(sum[:])
}

// Build создает модель мира. Никогда не завершается ошибкой: при сбое шлюза сводка
// содержит "Error during summary generation: <cause>".
func (b *Builder) Build(ctx context.Context, storyText string) *WorldModel {
	wm := &WorldModel{
		storyText: storyText,
		client:    b.client,
		logger:    b.logger,
	}

	key := CacheKey(storyText)
	if summary, ok := b.lookup(ctx, key); ok {
		wm.summary = models.Generated(summary)
		return wm
	}

	prompt := summaryPrompt(storyText)
	if b.contextTokens > 0 {
		if tokens := ai.EstimateTokens(b.model, prompt); tokens > b.contextTokens {
			b.logger.Warn("Story exceeds model context window, provider may reject or truncate it",
				zap.Int("estimatedTokens", tokens),
				zap.Int("contextTokens", b.contextTokens),
			)
		}
	}

	summary, err := b.client.Complete(ctx, prompt)
	if err != nil {
		b.logger.Warn("Summary generation failed, using degraded summary", zap.Error(err))
		wm.summary = models.DegradedText(summaryErrorPrefix, err)
		return wm
	}
	wm.summary = models.Generated(summary)

	if b.cache != nil {
		if err := b.cache.Set(ctx, key, summary); err != nil {
			b.logger.Warn("Failed to cache world summary", zap.String("key", key), zap.Error(err))
		}
	}
	return wm
}

func (b *Builder) lookup(ctx context.Context, key string) (string, bool) {
	if b.cache == nil {
		return "", false
	}
	summary, ok, err := b.cache.Get(ctx, key)
	switch {
	case err != nil:
		summaryCacheLookups.WithLabelValues("error").Inc()
		b.logger.Warn("Summary cache lookup failed, generating summary", zap.String("key", key), zap.Error(err))
		return "", false
	case !ok:
		summaryCacheLookups.WithLabelValues("miss").Inc()
		return "", false
	default:
		summaryCacheLookups.WithLabelValues("hit").Inc()
		b.logger.Debug("World summary served from cache", zap.String("key", key))
		return summary, true
	}
}
