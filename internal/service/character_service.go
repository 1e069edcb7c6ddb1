package service

import (
	"context"
	"errors"
	"time"

	"npc-server/internal/ai"
	"npc-server/internal/generator"
	"npc-server/internal/worldmodel"
	"npc-server/shared/interfaces"
	"npc-server/shared/messaging"
	"npc-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CharacterService управляет персонажами и генерирует новых по истории.
type CharacterService interface {
	CreateCharacter(ctx context.Context, storyID uuid.UUID, record models.CharacterRecord) (*models.Character, error)
	GetCharacter(ctx context.Context, id uuid.UUID) (*models.Character, error)
	UpdateCharacter(ctx context.Context, id uuid.UUID, record models.CharacterRecord) (*models.Character, error)
	DeleteCharacter(ctx context.Context, id uuid.UUID) error
	ListCharacters(ctx context.Context, filter models.CharacterFilter) ([]*models.Character, int64, error)

	// GenerateName возвращает имя, подходящее миру истории. Ошибки шлюза возвращаются как есть.
	GenerateName(ctx context.Context, storyID uuid.UUID, request string) (string, error)
	// GenerateCharacter генерирует и сохраняет персонажа. При неудачном разборе ничего не сохраняется.
	GenerateCharacter(ctx context.Context, storyID uuid.UUID, request string) (*models.Character, error)
}

type characterServiceImpl struct {
	stories    interfaces.StoryRepository
	characters interfaces.CharacterRepository
	builder    *worldmodel.Builder
	client     ai.Client
	publisher  interfaces.EventPublisher
	logger     *zap.Logger
}

func NewCharacterService(
	stories interfaces.StoryRepository,
	characters interfaces.CharacterRepository,
	builder *worldmodel.Builder,
	client ai.Client,
	publisher interfaces.EventPublisher,
	logger *zap.Logger,
) CharacterService {
	return &characterServiceImpl{
		stories:    stories,
		characters: characters,
		builder:    builder,
		client:     client,
		publisher:  publisher,
		logger:     logger.Named("CharacterService"),
	}
}

func (s *characterServiceImpl) CreateCharacter(ctx context.Context, storyID uuid.UUID, record models.CharacterRecord) (*models.Character, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	character := record.ToCharacter(storyID)
	if err := s.characters.Create(ctx, character); err != nil {
		return nil, notFound(err, models.ErrStoryNotFound, storyID)
	}
	return character, nil
}

func (s *characterServiceImpl) GetCharacter(ctx context.Context, id uuid.UUID) (*models.Character, error) {
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, models.ErrCharacterNotFound, id)
	}
	return character, nil
}

func (s *characterServiceImpl) UpdateCharacter(ctx context.Context, id uuid.UUID, record models.CharacterRecord) (*models.Character, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := record.ToCharacter(existing.StoryID)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.characters.Update(ctx, updated); err != nil {
		return nil, notFound(err, models.ErrCharacterNotFound, id)
	}
	return updated, nil
}

func (s *characterServiceImpl) DeleteCharacter(ctx context.Context, id uuid.UUID) error {
	if err := s.characters.Delete(ctx, id); err != nil {
		return notFound(err, models.ErrCharacterNotFound, id)
	}
	return nil
}

func (s *characterServiceImpl) ListCharacters(ctx context.Context, filter models.CharacterFilter) ([]*models.Character, int64, error) {
	return s.characters.List(ctx, filter)
}

// newGenerator строит мир истории и генератор с пустым реестром имен (один на запрос).
func (s *characterServiceImpl) newGenerator(ctx context.Context, storyID uuid.UUID) (*generator.Generator, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, notFound(err, models.ErrStoryNotFound, storyID)
	}
	world := s.builder.Build(ctx, story.Content)
	if world.Summary().Degraded {
		s.logger.Warn("Generating with degraded world summary", zap.String("storyID", storyID.String()))
	}
	return generator.New(world, s.client, s.logger), nil
}

func (s *characterServiceImpl) GenerateName(ctx context.Context, storyID uuid.UUID, request string) (string, error) {
	gen, err := s.newGenerator(ctx, storyID)
	if err != nil {
		return "", err
	}
	return gen.GenerateName(ctx, request)
}

func (s *characterServiceImpl) GenerateCharacter(ctx context.Context, storyID uuid.UUID, request string) (*models.Character, error) {
	log := s.logger.With(zap.String("storyID", storyID.String()))

	gen, err := s.newGenerator(ctx, storyID)
	if err != nil {
		return nil, err
	}
	record, err := gen.GenerateDetails(ctx, "", request)
	if err != nil {
		charactersGeneratedTotal.WithLabelValues(generationResult(err)).Inc()
		log.Warn("Character generation failed", zap.Error(err))
		return nil, err
	}

	character := record.ToCharacter(storyID)
	if err := s.characters.Create(ctx, character); err != nil {
		charactersGeneratedTotal.WithLabelValues("error").Inc()
		log.Error("Failed to persist generated character", zap.Error(err))
		return nil, notFound(err, models.ErrStoryNotFound, storyID)
	}
	charactersGeneratedTotal.WithLabelValues("success").Inc()
	log.Info("Character generated", zap.String("characterID", character.ID.String()), zap.String("name", character.Name))

	event := messaging.CharacterGeneratedEvent{
		CharacterID: character.ID,
		StoryID:     storyID,
		Name:        character.Name,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishCharacterGenerated(ctx, event); err != nil {
		log.Error("Failed to publish character generated event", zap.String("characterID", character.ID.String()), zap.Error(err))
	}
	return character, nil
}

func generationResult(err error) string {
	switch {
	case errors.Is(err, models.ErrMalformedGeneration):
		return "malformed"
	case errors.Is(err, ai.ErrAIGenerationFailed):
		return "gateway_error"
	default:
		return "error"
	}
}

