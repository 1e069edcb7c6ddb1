// Package conversation ведет диалог пользователя с персонажем и записывает историю переписки.
package conversation

import (
	"context"
	"fmt"
	"time"

	"npc-server/internal/ai"
	"npc-server/internal/personality"
	"npc-server/shared/interfaces"
	"npc-server/shared/models"

	"go.uber.org/zap"
)

// Clock отдает время для меток реплик.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock - часы по умолчанию (UTC).
var SystemClock Clock = systemClock{}

// Engine отвечает от лица одного персонажа.
type Engine struct {
	character  *models.Character
	client     ai.Client
	transcript interfaces.TurnWriter
	clock      Clock
	logger     *zap.Logger
}

func New(character *models.Character, client ai.Client, transcript interfaces.TurnWriter, clock Clock, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = SystemClock
	}
	return &Engine{
		character:  character,
		client:     client,
		transcript: transcript,
		clock:      clock,
		logger:     logger.Named("ConversationEngine").With(zap.String("characterID", character.ID.String())),
	}
}

// Disposition возвращает склонность персонажа, по которой строится тон ответа.
func (e *Engine) Disposition() personality.Disposition {
	return personality.Classify(e.character.PersonalityTraits.String())
}

// Reply генерирует ответ персонажа на сообщение.
// Сбой шлюза не возвращается ошибкой: ответ становится "Error while generating response: <cause>"
// и при persist записывается как реплика персонажа.
// Ошибка возвращается только при сбое записи истории.
func (e *Engine) Reply(ctx context.Context, message string, persist bool) (models.GeneratedText, error) {
	disposition := e.Disposition()

	var reply models.GeneratedText
	text, err := e.client.Complete(ctx, rolePlayPrompt(e.character, disposition, message))
	if err != nil {
		e.logger.Warn("Reply generation failed, answering with error text", zap.Error(err))
		reply = models.DegradedText(replyErrorPrefix, err)
	} else {
		reply = models.Generated(text)
	}

	if !persist {
		return reply, nil
	}

	userTurn := &models.ConversationTurn{
		CharacterID: e.character.ID,
		Message:     message,
		Sender:      models.SenderUser,
		Timestamp:   e.clock.Now(),
	}
	if err := e.transcript.AppendTurn(ctx, userTurn); err != nil {
		return reply, fmt.Errorf("append user turn: %w", err)
	}

	characterTurn := &models.ConversationTurn{
		CharacterID: e.character.ID,
		Message:     reply.Text,
		Sender:      models.SenderCharacter,
		Timestamp:   e.clock.Now(),
	}
	if characterTurn.Timestamp.Before(userTurn.Timestamp) {
		characterTurn.Timestamp = userTurn.Timestamp
	}
	if err := e.transcript.AppendTurn(ctx, characterTurn); err != nil {
		return reply, fmt.Errorf("append character turn: %w", err)
	}

	e.logger.Debug("Conversation exchange persisted",
		zap.String("userTurnID", userTurn.ID.String()),
		zap.String("characterTurnID", characterTurn.ID.String()),
		zap.String("disposition", disposition.String()),
		zap.Bool("degraded", reply.Degraded),
	)
	return reply, nil
}
