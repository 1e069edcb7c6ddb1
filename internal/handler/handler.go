package handler

import (
	"net/http"

	"npc-server/internal/service"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NPCHandler обслуживает HTTP API историй, персонажей и переписки.
type NPCHandler struct {
	stories       service.StoryService
	characters    service.CharacterService
	conversations service.ConversationService
	// llmLimiter ограничивает обращения к модели; nil - без ограничений.
	llmLimiter    rateli.Store
	logger        *zap.Logger
}

func NewNPCHandler(
	stories service.StoryService,
	characters service.CharacterService,
	conversations service.ConversationService,
	logger *zap.Logger,
) *NPCHandler {
	return &NPCHandler{
		stories:       stories,
		characters:    characters,
		conversations: conversations,
		logger:        logger.Named("NPCHandler"),
	}
}

// RegisterRoutes регистрирует маршруты. Лимит навешивается только на эндпоинты,
// которые ходят в языковую модель, включая WebSocket сессию; nil отключает ограничение.
func (h *NPCHandler) RegisterRoutes(router *gin.Engine, llmLimiter rateli.Store) {
	h.llmLimiter = llmLimiter
	llmRateLimit := func(c *gin.Context) { c.Next() }
	if llmLimiter != nil {
		llmRateLimit = llmRateLimitMiddleware(llmLimiter)
	}

	stories := router.Group("/stories")
	{
		stories.GET("", h.listStories)
		stories.POST("", h.createStory)
		stories.GET("/:id", h.getStory)
		stories.PUT("/:id", h.updateStory)
		stories.DELETE("/:id", h.deleteStory)
		stories.GET("/:id/characters", h.listStoryCharacters)

		stories.POST("/:id/ask-question", llmRateLimit, h.askQuestion)
		stories.POST("/:id/generate-name", llmRateLimit, h.generateName)
		stories.POST("/:id/generate-character", llmRateLimit, h.generateCharacter)
	}

	characters := router.Group("/characters")
	{
		characters.GET("", h.listCharacters)
		characters.POST("", h.createCharacter)
		characters.GET("/:id", h.getCharacter)
		characters.PUT("/:id", h.updateCharacter)
		characters.DELETE("/:id", h.deleteCharacter)

		characters.POST("/:id/talk", llmRateLimit, h.talk)
		characters.GET("/:id/talk/ws", llmRateLimit, h.talkWebSocket)
		characters.GET("/:id/conversation", h.listCharacterConversation)
	}

	router.GET("/conversations", h.listConversations)
}

// parseUUIDParam достает UUID из параметра пути. При ошибке ответ уже отправлен.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, badRequest("invalid "+name+": "+raw))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON разбирает тело запроса; ошибки валидации отдаются как VALIDATION_ERROR.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, validationError(err))
		return false
	}
	return true
}
