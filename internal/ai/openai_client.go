package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// openAIClient работает с любым OpenAI-совместимым API (OpenRouter, Gemini и т.п.).
type openAIClient struct {
	client  *openaigo.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOpenAIClient(cfg Config, logger *zap.Logger) *openAIClient {
	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &openAIClient{
		client:  openaigo.NewClientWithConfig(openaiConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("OpenAIClient"),
	}
}

func (c *openAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log := c.logger.With(zap.String("model", c.model), zap.Int("promptBytes", len(prompt)))
	log.Debug("Sending completion request")

	startTime := time.Now()
	resp, err := c.client.CreateChatCompletion(requestCtx, openaigo.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleUser, Content: prompt},
		},
	})
	duration := time.Since(startTime)

	if err != nil {
		status := statusError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(requestCtx.Err(), context.DeadlineExceeded) {
			status = statusTimeout
		}
		observeRequest(c.model, status, duration.Seconds())
		log.Warn("AI API request failed", zap.Duration("duration", duration), zap.String("status", status), zap.Error(err))
		return "", transientError(err)
	}

	if len(resp.Choices) == 0 {
		observeRequest(c.model, statusEmptyResponse, duration.Seconds())
		log.Warn("AI API returned no choices", zap.Duration("duration", duration))
		return "", contentError("no choices in response")
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openaigo.FinishReasonContentFilter {
		observeRequest(c.model, statusFiltered, duration.Seconds())
		log.Warn("AI API response was blocked by content filter", zap.Duration("duration", duration))
		return "", contentError("response blocked by content filter")
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		observeRequest(c.model, statusEmptyResponse, duration.Seconds())
		log.Warn("AI API returned empty content", zap.Duration("duration", duration))
		return "", contentError("empty response")
	}

	observeRequest(c.model, statusSuccess, duration.Seconds())
	observeUsage(c.model, prompt, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	log.Debug("Completion received",
		zap.Duration("duration", duration),
		zap.Int("responseBytes", len(choice.Message.Content)),
		zap.Int("promptTokens", resp.Usage.PromptTokens),
		zap.Int("completionTokens", resp.Usage.CompletionTokens),
	)
	return choice.Message.Content, nil
}
