package service

import (
	"context"
	"sync"

	"npc-server/internal/ai"
	"npc-server/internal/conversation"
	"npc-server/shared/interfaces"
	"npc-server/shared/messaging"
	"npc-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversationService ведет диалоги с персонажами и отдает историю переписки.
type ConversationService interface {
	// Talk возвращает ответ персонажа. Деградированный ответ не является ошибкой.
	Talk(ctx context.Context, characterID uuid.UUID, message string, persist bool) (models.GeneratedText, error)
	ListTurns(ctx context.Context, filter models.TurnFilter) ([]*models.ConversationTurn, int64, error)
}

type conversationServiceImpl struct {
	characters interfaces.CharacterRepository
	turns      interfaces.ConversationRepository
	client     ai.Client
	publisher  interfaces.EventPublisher
	clock      conversation.Clock
	logger     *zap.Logger
}

func NewConversationService(
	characters interfaces.CharacterRepository,
	turns interfaces.ConversationRepository,
	client ai.Client,
	publisher interfaces.EventPublisher,
	clock conversation.Clock,
	logger *zap.Logger,
) ConversationService {
	return &conversationServiceImpl{
		characters: characters,
		turns:      turns,
		client:     client,
		publisher:  publisher,
		clock:      clock,
		logger:     logger.Named("ConversationService"),
	}
}

func (s *conversationServiceImpl) Talk(ctx context.Context, characterID uuid.UUID, message string, persist bool) (models.GeneratedText, error) {
	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		return models.GeneratedText{}, notFound(err, models.ErrCharacterNotFound, characterID)
	}

	recorder := &recordingTurnWriter{next: s.turns}
	engine := conversation.New(character, s.client, recorder, s.clock, s.logger)
	reply, err := engine.Reply(ctx, message, persist)
	if err != nil {
		s.logger.Error("Failed to persist conversation turns",
			zap.String("characterID", characterID.String()), zap.Error(err))
		return models.GeneratedText{}, err
	}
	conversationRepliesTotal.WithLabelValues(boolLabel(reply.Degraded), boolLabel(persist)).Inc()

	if turns := recorder.recorded(); len(turns) == 2 {
		event := messaging.ConversationTurnEvent{
			CharacterID:     characterID,
			UserTurnID:      turns[0].ID,
			CharacterTurnID: turns[1].ID,
			Degraded:        reply.Degraded,
			At:              turns[1].Timestamp,
		}
		if err := s.publisher.PublishConversationTurn(ctx, event); err != nil {
			s.logger.Error("Failed to publish conversation turn event",
				zap.String("characterID", characterID.String()), zap.Error(err))
		}
	}
	return reply, nil
}

func (s *conversationServiceImpl) ListTurns(ctx context.Context, filter models.TurnFilter) ([]*models.ConversationTurn, int64, error) {
	return s.turns.ListTurns(ctx, filter)
}

// recordingTurnWriter запоминает записанные реплики, чтобы опубликовать их ID в событии.
type recordingTurnWriter struct {
	next  interfaces.TurnWriter
	mu    sync.Mutex
	turns []*models.ConversationTurn
}

func (w *recordingTurnWriter) AppendTurn(ctx context.Context, turn *models.ConversationTurn) error {
	if err := w.next.AppendTurn(ctx, turn); err != nil {
		return err
	}
	w.mu.Lock()
	w.turns = append(w.turns, turn)
	w.mu.Unlock()
	return nil
}

func (w *recordingTurnWriter) recorded() []*models.ConversationTurn {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.turns
}
