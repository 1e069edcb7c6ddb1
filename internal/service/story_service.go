package service

import (
	"context"
	"fmt"
	"strings"

	"npc-server/internal/worldmodel"
	"npc-server/shared/interfaces"
	"npc-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoryService управляет историями и отвечает на вопросы по их тексту.
type StoryService interface {
	CreateStory(ctx context.Context, title, content string) (*models.Story, error)
	GetStory(ctx context.Context, id uuid.UUID) (*models.Story, error)
	UpdateStory(ctx context.Context, id uuid.UUID, title, content string) (*models.Story, error)
	DeleteStory(ctx context.Context, id uuid.UUID) error
	ListStories(ctx context.Context, filter models.StoryFilter) ([]*models.Story, int64, error)
	// AskQuestion никогда не возвращает ошибку шлюза: она приходит текстом в GeneratedText.
	AskQuestion(ctx context.Context, storyID uuid.UUID, question string) (models.GeneratedText, error)
}

type storyServiceImpl struct {
	stories interfaces.StoryRepository
	builder *worldmodel.Builder
	logger  *zap.Logger
}

func NewStoryService(stories interfaces.StoryRepository, builder *worldmodel.Builder, logger *zap.Logger) StoryService {
	return &storyServiceImpl{
		stories: stories,
		builder: builder,
		logger:  logger.Named("StoryService"),
	}
}

func (s *storyServiceImpl) CreateStory(ctx context.Context, title, content string) (*models.Story, error) {
	if err := validateStory(title, content); err != nil {
		return nil, err
	}
	story := &models.Story{Title: strings.TrimSpace(title), Content: content}
	if err := s.stories.Create(ctx, story); err != nil {
		s.logger.Error("Failed to create story", zap.Error(err))
		return nil, fmt.Errorf("create story: %w", err)
	}
	s.logger.Info("Story created", zap.String("storyID", story.ID.String()), zap.Int("contentBytes", len(content)))
	return story, nil
}

func (s *storyServiceImpl) GetStory(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story, err := s.stories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, models.ErrStoryNotFound, id)
	}
	return story, nil
}

func (s *storyServiceImpl) UpdateStory(ctx context.Context, id uuid.UUID, title, content string) (*models.Story, error) {
	if err := validateStory(title, content); err != nil {
		return nil, err
	}
	story, err := s.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	story.Title = strings.TrimSpace(title)
	story.Content = content
	if err := s.stories.Update(ctx, story); err != nil {
		return nil, notFound(err, models.ErrStoryNotFound, id)
	}
	return story, nil
}

func (s *storyServiceImpl) DeleteStory(ctx context.Context, id uuid.UUID) error {
	if err := s.stories.Delete(ctx, id); err != nil {
		return notFound(err, models.ErrStoryNotFound, id)
	}
	s.logger.Info("Story deleted", zap.String("storyID", id.String()))
	return nil
}

func (s *storyServiceImpl) ListStories(ctx context.Context, filter models.StoryFilter) ([]*models.Story, int64, error) {
	return s.stories.List(ctx, filter)
}

func (s *storyServiceImpl) AskQuestion(ctx context.Context, storyID uuid.UUID, question string) (models.GeneratedText, error) {
	story, err := s.GetStory(ctx, storyID)
	if err != nil {
		return models.GeneratedText{}, err
	}
	answer := s.builder.Build(ctx, story.Content).AnswerQuestion(ctx, question)
	questionsAnsweredTotal.WithLabelValues(boolLabel(answer.Degraded)).Inc()
	return answer, nil
}
