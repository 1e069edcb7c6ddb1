package messaging

import (
	"time"

	"github.com/google/uuid"
)

// CharacterGeneratedEvent публикуется после сохранения сгенерированного персонажа.
type CharacterGeneratedEvent struct {
	CharacterID uuid.UUID `json:"character_id"`
	StoryID     uuid.UUID `json:"story_id"`
	Name        string    `json:"name"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ConversationTurnEvent публикуется после записи пары реплик USER/CHARACTER.
type ConversationTurnEvent struct {
	CharacterID     uuid.UUID `json:"character_id"`
	UserTurnID      uuid.UUID `json:"user_turn_id"`
	CharacterTurnID uuid.UUID `json:"character_turn_id"`
	Degraded        bool      `json:"degraded"`
	At              time.Time `json:"at"`
}
