package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"npc-server/shared/interfaces"
	"npc-server/shared/models"
	"npc-server/shared/utils"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var _ interfaces.ConversationRepository = (*pgConversationRepository)(nil)

const appendTurnQuery = `
INSERT INTO conversation_turns (id, character_id, message, sender, created_at)
VALUES ($1, $2, $3, $4, $5)`

type pgConversationRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgConversationRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ConversationRepository {
	return &pgConversationRepository{
		db:     db,
		logger: logger.Named("PgConversationRepo"),
	}
}

// AppendTurn добавляет реплику в конец переписки. Порядок вставки сохраняется в колонке seq.
func (r *pgConversationRepository) AppendTurn(ctx context.Context, turn *models.ConversationTurn) error {
	if turn.ID == uuid.Nil {
		turn.ID = uuid.New()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, appendTurnQuery, turn.ID, turn.CharacterID, turn.Message, string(turn.Sender), turn.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("character %s: %w", turn.CharacterID, models.ErrNotFound)
		}
		r.logger.Error("Failed to append conversation turn",
			zap.String("characterID", turn.CharacterID.String()),
			zap.String("sender", string(turn.Sender)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to append conversation turn: %w", err)
	}
	r.logger.Debug("Conversation turn appended",
		zap.String("turnID", turn.ID.String()),
		zap.String("characterID", turn.CharacterID.String()),
		zap.String("sender", string(turn.Sender)),
	)
	return nil
}

// ListTurns возвращает страницу реплик по возрастанию времени.
func (r *pgConversationRepository) ListTurns(ctx context.Context, filter models.TurnFilter) ([]*models.ConversationTurn, int64, error) {
	page, size := utils.NormalizePage(filter.Page, filter.Size)

	var w whereBuilder
	if filter.CharacterID != nil {
		w.add("character_id = $%d", *filter.CharacterID)
	}
	if filter.Sender != nil {
		w.add("sender = $%d", string(*filter.Sender))
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM conversation_turns"+w.sql(), w.args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count conversation turns", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count conversation turns: %w", err)
	}

	limit, args := w.limitOffset(size, utils.Offset(page, size))
	query := "SELECT id, character_id, message, sender, created_at FROM conversation_turns" +
		w.sql() + " ORDER BY created_at ASC, seq ASC" + limit

	turns := make([]*models.ConversationTurn, 0, size)
	if err := pgxscan.Select(ctx, r.db, &turns, query, args...); err != nil {
		r.logger.Error("Failed to list conversation turns", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list conversation turns: %w", err)
	}
	return turns, total, nil
}
