package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"npc-server/shared/models"

	"github.com/google/uuid"
)

const maxTitleLength = 255

// notFound переводит models.ErrNotFound из репозитория в ошибку конкретной сущности.
func notFound(err error, target error, id uuid.UUID) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s", target, id)
	}
	return err
}

func validateStory(title, content string) error {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", models.ErrValidation)
	case utf8.RuneCountInString(title) > maxTitleLength:
		return fmt.Errorf("%w: title must be at most %d characters", models.ErrValidation, maxTitleLength)
	case strings.TrimSpace(content) == "":
		return fmt.Errorf("%w: content is required", models.ErrValidation)
	}
	return nil
}
