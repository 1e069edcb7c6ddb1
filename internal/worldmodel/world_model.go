// Package worldmodel превращает текст истории в переиспользуемую модель мира со сводкой.
package worldmodel

import (
	"context"

	"npc-server/internal/ai"
	"npc-server/shared/models"

	"go.uber.org/zap"
)

// WorldModel хранит исходный текст истории и сводку, сгенерированную один раз при создании.
// После создания не изменяется и безопасна для параллельного использования.
type WorldModel struct {
	storyText string
	summary   models.GeneratedText
	client    ai.Client
	logger    *zap.Logger
}

func (w *WorldModel) StoryText() string {
	return w.storyText
}

// Summary возвращает сводку мира. Если генерация не удалась, Degraded=true, а Text содержит текст ошибки.
func (w *WorldModel) Summary() models.GeneratedText {
	return w.summary
}

// AnswerQuestion отвечает на вопрос по исходному тексту истории (не по сводке).
// Ошибка шлюза не возвращается, а превращается в текст "Error while answering the question: ...".
func (w *WorldModel) AnswerQuestion(ctx context.Context, question string) models.GeneratedText {
	answer, err := w.client.Complete(ctx, questionPrompt(w.storyText, question))
	if err != nil {
		w.logger.Warn("Failed to answer question about story", zap.Error(err))
		return models.DegradedText(answerErrorPrefix, err)
	}
	return models.Generated(answer)
}
