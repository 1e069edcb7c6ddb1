package database

import (
	"context"
	"encoding/json"
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
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var _ interfaces.CharacterRepository = (*pgCharacterRepository)(nil)

const (
	characterColumns = "id, story_id, name, faction, profession, personality_traits, background, created_at"

	createCharacterQuery = `
INSERT INTO characters (id, story_id, name, faction, profession, personality_traits, background, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getCharacterByIDQuery = `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`

	updateCharacterQuery = `
UPDATE characters
SET name = $2, faction = $3, profession = $4, personality_traits = $5, background = $6
WHERE id = $1`

	deleteCharacterQuery = `DELETE FROM characters WHERE id = $1`
)

// pgForeignKeyViolation - код ошибки PostgreSQL при нарушении внешнего ключа.
const pgForeignKeyViolation = "23503"

type pgCharacterRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgCharacterRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CharacterRepository {
	return &pgCharacterRepository{
		db:     db,
		logger: logger.Named("PgCharacterRepo"),
	}
}

// Create сохраняет персонажа. Черты характера пишутся в jsonb в исходной форме.
func (r *pgCharacterRepository) Create(ctx context.Context, c *models.Character) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	traits, err := json.Marshal(c.PersonalityTraits)
	if err != nil {
		return fmt.Errorf("failed to encode personality traits: %w", err)
	}

	logFields := []zap.Field{zap.String("characterID", c.ID.String()), zap.String("storyID", c.StoryID.String())}
	_, err = r.db.Exec(ctx, createCharacterQuery,
		c.ID, c.StoryID, c.Name, c.Faction, c.Profession, traits, c.Background, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			r.logger.Warn("Story for character does not exist", logFields...)
			return fmt.Errorf("story %s: %w", c.StoryID, models.ErrNotFound)
		}
		r.logger.Error("Failed to create character", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create character: %w", err)
	}
	r.logger.Info("Character created", append(logFields, zap.String("name", c.Name))...)
	return nil
}

func (r *pgCharacterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Character, error) {
	var c models.Character
	if err := pgxscan.Get(ctx, r.db, &c, getCharacterByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Character not found", zap.String("characterID", id.String()))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get character by ID", zap.String("characterID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get character %s: %w", id, err)
	}
	return &c, nil
}

func (r *pgCharacterRepository) Update(ctx context.Context, c *models.Character) error {
	traits, err := json.Marshal(c.PersonalityTraits)
	if err != nil {
		return fmt.Errorf("failed to encode personality traits: %w", err)
	}
	tag, err := r.db.Exec(ctx, updateCharacterQuery, c.ID, c.Name, c.Faction, c.Profession, traits, c.Background)
	if err != nil {
		r.logger.Error("Failed to update character", zap.String("characterID", c.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update character %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgCharacterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteCharacterQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete character", zap.String("characterID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete character %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List фильтрует по истории, фракции, профессии и строке поиска; новые персонажи первыми.
func (r *pgCharacterRepository) List(ctx context.Context, filter models.CharacterFilter) ([]*models.Character, int64, error) {
	page, size := utils.NormalizePage(filter.Page, filter.Size)

	var w whereBuilder
	if filter.StoryID != nil {
		w.add("story_id = $%d", *filter.StoryID)
	}
	if v := strings.TrimSpace(filter.Faction); v != "" {
		w.add("faction = $%d", v)
	}
	if v := strings.TrimSpace(filter.Profession); v != "" {
		w.add("profession = $%d", v)
	}
	if v := strings.TrimSpace(filter.Search); v != "" {
		w.addGroup(likePattern(v), "name", "faction", "profession")
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM characters"+w.sql(), w.args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count characters", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count characters: %w", err)
	}

	limit, args := w.limitOffset(size, utils.Offset(page, size))
	query := "SELECT " + characterColumns + " FROM characters" + w.sql() + " ORDER BY created_at DESC, id" + limit

	characters := make([]*models.Character, 0, size)
	if err := pgxscan.Select(ctx, r.db, &characters, query, args...); err != nil {
		r.logger.Error("Failed to list characters", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, total, nil
}
