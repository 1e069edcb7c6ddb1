package handler

import (
	"net/http"

	"npc-server/shared/models"
	"npc-server/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *NPCHandler) listCharacters(c *gin.Context) {
	filter := models.CharacterFilter{
		Faction:    c.Query("faction"),
		Profession: c.Query("profession"),
		Search:     c.Query("search"),
	}
	if raw := c.Query("story_id"); raw != "" {
		storyID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, badRequest("invalid story_id: "+raw))
			return
		}
		filter.StoryID = &storyID
	}
	h.respondCharacters(c, filter)
}

func (h *NPCHandler) listStoryCharacters(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.stories.GetStory(c.Request.Context(), storyID); err != nil {
		handleServiceError(c, err)
		return
	}
	h.respondCharacters(c, models.CharacterFilter{StoryID: &storyID})
}

func (h *NPCHandler) respondCharacters(c *gin.Context, filter models.CharacterFilter) {
	filter.Page, filter.Size = utils.ParsePageParams(c.Query("page"), c.Query("page_size"))

	characters, total, err := h.characters.ListCharacters(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PaginatedResponse[*models.Character]{
		Data: nonNil(characters), Page: filter.Page, PageSize: filter.Size, Total: total,
	})
}

func (h *NPCHandler) createCharacter(c *gin.Context) {
	var req characterRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Story == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeValidation, Message: "story is required"})
		return
	}
	storyID := uuid.MustParse(req.Story)

	character, err := h.characters.CreateCharacter(c.Request.Context(), storyID, req.record())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

func (h *NPCHandler) getCharacter(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	character, err := h.characters.GetCharacter(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *NPCHandler) updateCharacter(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req characterRequest
	if !bindJSON(c, &req) {
		return
	}
	character, err := h.characters.UpdateCharacter(c.Request.Context(), id, req.record())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *NPCHandler) deleteCharacter(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.characters.DeleteCharacter(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
