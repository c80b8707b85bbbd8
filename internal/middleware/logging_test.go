package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"
)

func TestNewLogger_StampsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(42))
	logger.With("component", "test").InfoContext(ctx, "hello")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"), "production logs are JSON")
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":42`)
	assert.Contains(t, out, `"component":"test"`)
}

func TestNewLogger_TestEnvSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")
	logger.Info("quiet")
	assert.Empty(t, buf.String())
	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestStructuredLogger_ReportsErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	Logger = NewLogger(&buf, "development")
	t.Cleanup(func() { Logger = prev })

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, models.HTTPStatus(err), err)
		},
	})
	app.Use(requestid.New(), ContextMiddleware(), StructuredLogger())
	app.Get("/missing", func(c *fiber.Ctx) error {
		return models.NewNotFoundError("Post", 7)
	})
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, buf.String(), "request failed")
	assert.Contains(t, buf.String(), "status=404")
	assert.Contains(t, buf.String(), "request_id=")

	buf.Reset()
	_, err = app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "request processed")
	assert.Contains(t, buf.String(), "status=200")
}

func TestContextMiddleware_CopiesLocals(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(5))
		return c.Next()
	}, ContextMiddleware())

	var got uint
	app.Get("/", func(c *fiber.Ctx) error {
		got, _ = c.UserContext().Value(UserIDKey).(uint)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, uint(5), got)
}

func TestHTTPStatusOfPlainError(t *testing.T) {
	assert.Equal(t, 500, models.HTTPStatus(errors.New("x")))
}
