package server

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/response"
	"github.com/minkgkyaw9899/m-blog-server/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a route parameter as a positive uint.
// The error message names the resource: "id" -> "Invalid post id",
// "commentId" -> "Invalid comment id".
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewBadRequestError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// A bare "id" always refers to a post.
func humanizeParam(param string) string {
	if param == "id" {
		return "post id"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " id"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parsePagination reads page and limit. Invalid values fall back to the
// defaults; the service layer applies the remaining bounds.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	return c.QueryInt("page", response.DefaultPage), c.QueryInt("limit", response.DefaultLimit)
}

// parseBody decodes a JSON body, reporting any decoding failure as a missing body.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		middleware.Logger.DebugContext(c.UserContext(), "body parse failed", slog.String("error", err.Error()))
		return models.NewValidationError(validation.RequestBodyRequired)
	}
	return nil
}

// currentUserID returns the identity stored by AuthRequired.
func currentUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return 0, models.NewUnauthorizedError("Unauthorized")
	}
	return userID, nil
}
