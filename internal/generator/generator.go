// Package generator создает структурированных персонажей на основе модели мира.
package generator

import (
	"context"
	"fmt"
	"strings"

	"npc-server/internal/ai"
	"npc-server/internal/worldmodel"
	"npc-server/shared/models"
	"npc-server/shared/utils"

	"go.uber.org/zap"
)

// MalformedGenerationError возвращается, когда ответ модели не разобран и после повторного запроса.
type MalformedGenerationError struct {
	Name string
	// Raw - последний ответ модели.
	Raw string
	Err error
}

func (e *MalformedGenerationError) Error() string {
	return fmt.Sprintf("malformed character data for %q after retry: %v", e.Name, e.Err)
}

func (e *MalformedGenerationError) Unwrap() error {
	return models.ErrMalformedGeneration
}

// Generator генерирует имена и атрибуты персонажей для одного мира.
type Generator struct {
	world    *worldmodel.WorldModel
	client   ai.Client
	registry *NameRegistry
	logger   *zap.Logger
}

func New(world *worldmodel.WorldModel, client ai.Client, logger *zap.Logger) *Generator {
	return &Generator{
		world:    world,
		client:   client,
		registry: NewNameRegistry(),
		logger:   logger.Named("CharacterGenerator"),
	}
}

func (g *Generator) Registry() *NameRegistry {
	return g.registry
}

// GenerateName запрашивает у модели новое имя, избегая уже выданных этим генератором.
func (g *Generator) GenerateName(ctx context.Context, request string) (string, error) {
	prompt := namePrompt(g.world.Summary().Text, request, g.registry.Names())
	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("Name generation failed", zap.Error(err))
		return "", fmt.Errorf("generate name: %w", err)
	}
	name := strings.TrimSpace(raw)
	g.registry.Add(name)
	g.logger.Debug("Name generated", zap.String("name", name), zap.Int("registrySize", g.registry.Len()))
	return name, nil
}

// GenerateDetails возвращает полный набор атрибутов персонажа.
// Пустое name означает, что сначала генерируется имя.
// Если ответ не удалось разобрать, делается ровно один повтор с более строгим промптом.
// Ошибки шлюза возвращаются сразу, без повтора.
func (g *Generator) GenerateDetails(ctx context.Context, name, request string) (*models.CharacterRecord, error) {
	if strings.TrimSpace(name) == "" {
		var err error
		if name, err = g.GenerateName(ctx, request); err != nil {
			return nil, err
		}
	}
	log := g.logger.With(zap.String("name", name))

	raw, err := g.client.Complete(ctx, detailsPrompt(name, g.world.Summary().Text, request))
	if err != nil {
		log.Warn("Character details generation failed", zap.Error(err))
		return nil, fmt.Errorf("generate character details: %w", err)
	}
	record, parseErr := parseRecord(utils.StripCodeFence(raw))
	if parseErr == nil {
		return record, nil
	}
	log.Info("Model returned malformed character data, retrying with strict prompt", zap.Error(parseErr))

	raw, err = g.client.Complete(ctx, strictDetailsPrompt(name))
	if err != nil {
		log.Warn("Strict character details generation failed", zap.Error(err))
		return nil, fmt.Errorf("generate character details (retry): %w", err)
	}
	record, parseErr = parseRecord(strings.TrimSpace(raw))
	if parseErr != nil {
		log.Warn("Model returned malformed character data twice", zap.Error(parseErr), zap.Int("rawBytes", len(raw)))
		return nil, &MalformedGenerationError{Name: name, Raw: raw, Err: parseErr}
	}
	return record, nil
}

func parseRecord(s string) (*models.CharacterRecord, error) {
	var record models.CharacterRecord
	if err := utils.DecodeJSONValue(s, &record); err != nil {
		return nil, err
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return &record, nil
}
