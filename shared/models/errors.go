package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound          = errors.New("resource not found")
	ErrStoryNotFound     = errors.New("story not found")
	ErrCharacterNotFound = errors.New("character not found")

	// General Request Errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("invalid input data")

	// Generation Errors
	// ErrMalformedGeneration означает, что ответ модели не удалось разобрать даже после повторной попытки.
	ErrMalformedGeneration = errors.New("malformed generation output")

	ErrInternalServer = errors.New("internal server error")
)
