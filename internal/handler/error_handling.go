package handler

import (
	"errors"
	"net/http"

	"npc-server/internal/ai"
	"npc-server/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func handleServiceError(c *gin.Context, err error) {
	statusCode, errResp := errorResponseFor(err)
	c.AbortWithStatusJSON(statusCode, errResp)
}

// errorResponseFor переводит ошибку сервиса в HTTP статус и тело ответа.
// Используется и в REST, и в кадрах ошибок WebSocket.
func errorResponseFor(err error) (int, models.ErrorResponse) {
	switch {
	case errors.Is(err, models.ErrStoryNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: models.ErrCodeNotFound, Message: "Story not found"}
	case errors.Is(err, models.ErrCharacterNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: models.ErrCodeNotFound, Message: "Character not found"}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: models.ErrCodeNotFound, Message: "Resource not found"}
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, badRequest(err.Error())
	case errors.Is(err, models.ErrMalformedGeneration):
		zap.L().Warn("Generation produced malformed output", zap.Error(err))
		return http.StatusInternalServerError, models.ErrorResponse{Code: models.ErrCodeGenerationFailed, Message: "The model returned malformed character data"}
	case errors.Is(err, ai.ErrTransient):
		zap.L().Warn("AI gateway unavailable", zap.Error(err))
		return http.StatusServiceUnavailable, models.ErrorResponse{Code: models.ErrCodeAIUnavailable, Message: "The language model is temporarily unavailable"}
	case errors.Is(err, ai.ErrContent):
		zap.L().Warn("AI gateway returned unusable content", zap.Error(err))
		return http.StatusBadGateway, models.ErrorResponse{Code: models.ErrCodeGenerationFailed, Message: "The language model returned an unusable response"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		return http.StatusInternalServerError, models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}
}

func badRequest(msg string) models.ErrorResponse {
	return models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: msg}
}

func validationError(err error) models.ErrorResponse {
	return models.ErrorResponse{Code: models.ErrCodeValidation, Message: err.Error()}
}
