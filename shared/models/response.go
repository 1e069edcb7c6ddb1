package models

// Стабильные коды ошибок для клиентов API.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeAIUnavailable    = "AI_UNAVAILABLE"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaginatedResponse оборачивает страницу результатов списка.
type PaginatedResponse[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}
