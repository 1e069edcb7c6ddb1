package handler

import (
	"net/http"

	"npc-server/shared/models"
	"npc-server/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// talk всегда отвечает 200, даже если ответ модели деградировал: текст ошибки приходит в response.
func (h *NPCHandler) talk(c *gin.Context) {
	characterID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req talkRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.conversations.Talk(c.Request.Context(), characterID, req.Message, models.BoolValue(req.Persist, true))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if reply.Degraded {
		h.logger.Warn("Returning degraded reply", zap.String("characterID", characterID.String()), zap.Error(reply.Cause))
	}
	c.JSON(http.StatusOK, talkResponse{Response: reply.Text})
}

func (h *NPCHandler) listCharacterConversation(c *gin.Context) {
	characterID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.characters.GetCharacter(c.Request.Context(), characterID); err != nil {
		handleServiceError(c, err)
		return
	}
	filter, ok := turnFilterFromQuery(c)
	if !ok {
		return
	}
	filter.CharacterID = &characterID
	h.respondTurns(c, filter)
}

// listConversations отдает реплики всех персонажей; неизвестный character_id дает пустой список.
func (h *NPCHandler) listConversations(c *gin.Context) {
	filter, ok := turnFilterFromQuery(c)
	if !ok {
		return
	}
	if raw := c.Query("character_id"); raw != "" {
		characterID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, badRequest("invalid character_id: "+raw))
			return
		}
		filter.CharacterID = &characterID
	}
	h.respondTurns(c, filter)
}

func turnFilterFromQuery(c *gin.Context) (models.TurnFilter, bool) {
	var filter models.TurnFilter
	filter.Page, filter.Size = utils.ParsePageParams(c.Query("page"), c.Query("page_size"))
	if raw := c.Query("sender"); raw != "" {
		sender, err := models.ParseSender(raw)
		if err != nil {
			handleServiceError(c, err)
			return filter, false
		}
		filter.Sender = &sender
	}
	return filter, true
}

func (h *NPCHandler) respondTurns(c *gin.Context, filter models.TurnFilter) {
	turns, total, err := h.conversations.ListTurns(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PaginatedResponse[*models.ConversationTurn]{
		Data: nonNil(turns), Page: filter.Page, PageSize: filter.Size, Total: total,
	})
}
