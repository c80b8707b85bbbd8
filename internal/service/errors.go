package service

import (
	"errors"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"
)

func notFound(message string) *models.AppError {
	return &models.AppError{Code: models.CodeNotFound, Message: message}
}

// internal wraps unexpected store errors, leaving AppErrors untouched.
func internal(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
