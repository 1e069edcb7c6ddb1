package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(cfg Config, logger *zap.Logger) (*ollamaClient, error) {
	// api.NewClient требует URL без суффикса /v1
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", baseURL, err)
	}

	return &ollamaClient{
		client:  api.NewClient(parsedURL, &http.Client{Timeout: cfg.Timeout}),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("OllamaClient"),
	}, nil
}

func (c *ollamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
	}

	log := c.logger.With(zap.String("model", c.model), zap.Int("promptBytes", len(prompt)))
	log.Debug("Sending chat request")

	startTime := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(startTime)

	if err != nil {
		status := statusError
		if errors.Is(err, context.DeadlineExceeded) {
			status = statusTimeout
		}
		observeRequest(c.model, status, duration.Seconds())
		log.Warn("Ollama API request failed", zap.Duration("duration", duration), zap.String("status", status), zap.Error(err))
		return "", transientError(err)
	}

	if strings.TrimSpace(resp.Message.Content) == "" {
		observeRequest(c.model, statusEmptyResponse, duration.Seconds())
		log.Warn("Ollama API returned empty content", zap.Duration("duration", duration), zap.String("doneReason", resp.DoneReason))
		return "", contentError("empty response")
	}

	observeRequest(c.model, statusSuccess, duration.Seconds())
	observeUsage(c.model, prompt, resp.PromptEvalCount, resp.EvalCount)
	log.Debug("Chat response received",
		zap.Duration("duration", duration),
		zap.Int("responseBytes", len(resp.Message.Content)),
		zap.Int("promptTokens", resp.PromptEvalCount),
		zap.Int("completionTokens", resp.EvalCount),
	)
	return resp.Message.Content, nil
}
