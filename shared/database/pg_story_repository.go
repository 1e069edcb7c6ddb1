package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"npc-server/shared/interfaces"
	"npc-server/shared/models"
	"npc-server/shared/utils"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

const (
	createStoryQuery = `
INSERT INTO stories (id, title, content, uploaded_at)
VALUES ($1, $2, $3, $4)`

	getStoryByIDQuery = `
SELECT id, title, content, uploaded_at
FROM stories
WHERE id = $1`

	updateStoryQuery = `
UPDATE stories SET title = $2, content = $3
WHERE id = $1`

	deleteStoryQuery = `DELETE FROM stories WHERE id = $1`
)

type pgStoryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgStoryRepository создает репозиторий историй поверх пула или транзакции.
func NewPgStoryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.UploadedAt.IsZero() {
		story.UploadedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, createStoryQuery, story.ID, story.Title, story.Content, story.UploadedAt)
	if err != nil {
		r.logger.Error("Failed to create story", zap.String("storyID", story.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create story: %w", err)
	}
	r.logger.Info("Story created", zap.String("storyID", story.ID.String()), zap.Int("contentBytes", len(story.Content)))
	return nil
}

func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	var story models.Story
	if err := pgxscan.Get(ctx, r.db, &story, getStoryByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Story not found", zap.String("storyID", id.String()))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story by ID", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return &story, nil
}

func (r *pgStoryRepository) Update(ctx context.Context, story *models.Story) error {
	tag, err := r.db.Exec(ctx, updateStoryQuery, story.ID, story.Title, story.Content)
	if err != nil {
		r.logger.Error("Failed to update story", zap.String("storyID", story.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update story %s: %w", story.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteStoryQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete story", zap.String("storyID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Story deleted", zap.String("storyID", id.String()))
	return nil
}

func (r *pgStoryRepository) List(ctx context.Context, filter models.StoryFilter) ([]*models.Story, int64, error) {
	page, size := utils.NormalizePage(filter.Page, filter.Size)

	var w whereBuilder
	if search := strings.TrimSpace(filter.Search); search != "" {
		w.add("title ILIKE $%d", likePattern(search))
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM stories"+w.sql(), w.args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count stories", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count stories: %w", err)
	}

	limit, args := w.limitOffset(size, utils.Offset(page, size))
	query := "SELECT id, title, content, uploaded_at FROM stories" + w.sql() + " ORDER BY uploaded_at DESC, id" + limit

	stories := make([]*models.Story, 0, size)
	if err := pgxscan.Select(ctx, r.db, &stories, query, args...); err != nil {
		r.logger.Error("Failed to list stories", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, total, nil
}
