package server

import (
	"log/slog"

	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"

	"github.com/gofiber/fiber/v2"
)

// NotFoundMessage is reported for any path no route matches.
const NotFoundMessage = "Your request not found"

// ErrorHandler is the single place errors become HTTP responses.
// Unexpected failures are logged with their cause and reported without details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := models.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// NotFound is mounted last and answers every unmatched route.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound, NotFoundMessage)
}
