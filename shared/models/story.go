package models

import (
	"time"

	"github.com/google/uuid"
)

// Story - загруженный автором текст истории, на основе которого генерируются персонажи.
type Story struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// StoryFilter задает параметры выборки списка историй.
type StoryFilter struct {
	Search string // Поиск по подстроке в заголовке (без учета регистра)
	Page   int
	Size   int
}
