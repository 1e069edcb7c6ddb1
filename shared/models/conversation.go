package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender различает автора реплики в переписке.
type Sender string

const (
	SenderUser      Sender = "USER"
	SenderCharacter Sender = "CHARACTER"
)

// ParseSender принимает значение фильтра без учета регистра.
func ParseSender(s string) (Sender, error) {
	switch Sender(strings.ToUpper(strings.TrimSpace(s))) {
	case SenderUser:
		return SenderUser, nil
	case SenderCharacter:
		return SenderCharacter, nil
	default:
		return "", fmt.Errorf("%w: unknown sender %q", ErrInvalidInput, s)
	}
}

// ConversationTurn - одна реплика в переписке с персонажем.
type ConversationTurn struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CharacterID uuid.UUID `db:"character_id" json:"character"`
	Message     string    `db:"message" json:"message"`
	Sender      Sender    `db:"sender" json:"sender"`
	Timestamp   time.Time `db:"created_at" json:"timestamp"`
}

// TurnFilter задает параметры выборки истории переписки.
type TurnFilter struct {
	CharacterID *uuid.UUID
	Sender      *Sender
	Page        int
	Size        int
}
