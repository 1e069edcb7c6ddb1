package interfaces

import (
	"context"

	"npc-server/shared/models"

	"github.com/google/uuid"
)

// StoryRepository определяет методы хранения историй.
//
//go:generate mockery --name StoryRepository --output ../../internal/mocks --outpkg mocks --case=underscore
type StoryRepository interface {
	// Create сохраняет историю. ID и UploadedAt заполняются, если пусты.
	Create(ctx context.Context, story *models.Story) error
	// GetByID возвращает models.ErrNotFound, если истории нет.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	// Update обновляет заголовок и текст. Возвращает models.ErrNotFound, если истории нет.
	Update(ctx context.Context, story *models.Story) error
	// Delete удаляет историю вместе с ее персонажами (ON DELETE CASCADE).
	Delete(ctx context.Context, id uuid.UUID) error
	// List возвращает страницу историй (новые первыми) и общее количество.
	List(ctx context.Context, filter models.StoryFilter) ([]*models.Story, int64, error)
}
