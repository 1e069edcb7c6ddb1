package handler

import (
	"net/http"

	"npc-server/shared/models"
	"npc-server/shared/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *NPCHandler) listStories(c *gin.Context) {
	page, size := utils.ParsePageParams(c.Query("page"), c.Query("page_size"))
	filter := models.StoryFilter{Search: c.Query("search"), Page: page, Size: size}

	stories, total, err := h.stories.ListStories(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PaginatedResponse[*models.Story]{
		Data: nonNil(stories), Page: page, PageSize: size, Total: total,
	})
}

func (h *NPCHandler) createStory(c *gin.Context) {
	var req storyRequest
	if !bindJSON(c, &req) {
		return
	}
	story, err := h.stories.CreateStory(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	storiesCreatedTotal.Inc()
	c.JSON(http.StatusCreated, story)
}

func (h *NPCHandler) getStory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	story, err := h.stories.GetStory(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *NPCHandler) updateStory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req storyRequest
	if !bindJSON(c, &req) {
		return
	}
	story, err := h.stories.UpdateStory(c.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *NPCHandler) deleteStory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.stories.DeleteStory(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NPCHandler) askQuestion(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req askQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	answer, err := h.stories.AskQuestion(c.Request.Context(), storyID, req.Question)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if answer.Degraded {
		h.logger.Warn("Returning degraded answer", zap.String("storyID", storyID.String()), zap.Error(answer.Cause))
	}
	c.JSON(http.StatusOK, askQuestionResponse{Answer: answer.Text})
}

func (h *NPCHandler) generateName(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req generateRequest
	if !bindJSON(c, &req) {
		return
	}

	name, err := h.characters.GenerateName(c.Request.Context(), storyID, req.Request)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, generateNameResponse{Name: name})
}

func (h *NPCHandler) generateCharacter(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req generateRequest
	if !bindJSON(c, &req) {
		return
	}

	character, err := h.characters.GenerateCharacter(c.Request.Context(), storyID, req.Request)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

// nonNil нужен, чтобы пустой список сериализовался как [], а не null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
