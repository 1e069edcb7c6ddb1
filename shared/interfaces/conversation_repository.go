package interfaces

import (
	"context"

	"npc-server/shared/models"
)

// TurnWriter - минимальный интерфейс записи реплик, которым пользуется движок диалога.
type TurnWriter interface {
	AppendTurn(ctx context.Context, turn *models.ConversationTurn) error
}

// ConversationRepository хранит упорядоченную историю переписки.
//
//go:generate mockery --name ConversationRepository --output ../../internal/mocks --outpkg mocks --case=underscore
type ConversationRepository interface {
	TurnWriter
	// ListTurns возвращает реплики по возрастанию времени (при равенстве - в порядке вставки).
	ListTurns(ctx context.Context, filter models.TurnFilter) ([]*models.ConversationTurn, int64, error)
}
