package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrAIGenerationFailed - любая неудача обращения к LLM.
var ErrAIGenerationFailed = errors.New("ai generation failed")

var (
	// ErrTransient - таймаут, сетевая ошибка или ошибка API провайдера. Повтор запроса может помочь.
	ErrTransient = errors.New("transient gateway error")
	// ErrContent - провайдер ответил, но без пригодного текста (пустой ответ, content filter).
	ErrContent = errors.New("unusable completion content")
)

// Client - единственная точка обращения к LLM: один промпт, один ответ.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config задает провайдера явно при создании клиента.
type Config struct {
	Type    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient создает клиент в зависимости от cfg.Type ("openai" | "ollama").
func NewClient(cfg Config, logger *zap.Logger) (Client, error) {
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("ai client timeout must be positive, got %v", cfg.Timeout)
	}
	switch strings.ToLower(cfg.Type) {
	case "openai":
		logger.Info("Используется реализация AI клиента: OpenAI", zap.String("baseURL", cfg.BaseURL), zap.String("model", cfg.Model))
		return newOpenAIClient(cfg, logger), nil
	case "ollama":
		logger.Info("Используется реализация AI клиента: Ollama", zap.String("baseURL", cfg.BaseURL), zap.String("model", cfg.Model))
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI client type: '%s'", cfg.Type)
	}
}

func transientError(err error) error {
	return fmt.Errorf("%w: %w: %v", ErrAIGenerationFailed, ErrTransient, err)
}

func contentError(reason string) error {
	return fmt.Errorf("%w: %w: %s", ErrAIGenerationFailed, ErrContent, reason)
}

// IsTransient сообщает, относится ли ошибка к временным сбоям шлюза.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
