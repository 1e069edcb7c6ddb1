package interfaces

import (
	"context"

	"npc-server/shared/models"

	"github.com/google/uuid"
)

// CharacterRepository определяет методы хранения персонажей.
//
//go:generate mockery --name CharacterRepository --output ../../internal/mocks --outpkg mocks --case=underscore
type CharacterRepository interface {
	// Create сохраняет персонажа. Если истории нет, возвращает models.ErrNotFound.
	Create(ctx context.Context, character *models.Character) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Character, error)
	Update(ctx context.Context, character *models.Character) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List возвращает страницу персонажей (новые первыми) и общее количество.
	List(ctx context.Context, filter models.CharacterFilter) ([]*models.Character, int64, error)
}
