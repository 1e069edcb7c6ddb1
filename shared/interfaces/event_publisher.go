package interfaces

import (
	"context"

	"npc-server/shared/messaging"
)

// EventPublisher публикует доменные события сервиса.
type EventPublisher interface {
	PublishCharacterGenerated(ctx context.Context, event messaging.CharacterGeneratedEvent) error
	PublishConversationTurn(ctx context.Context, event messaging.ConversationTurnEvent) error
}
