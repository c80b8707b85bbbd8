package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "post id"},
		{"commentId", "comment id"},
		{"postCommentId", "post comment id"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- parseID ---

func TestParseID(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/posts/:id/comments/:commentId", func(c *fiber.Ctx) error {
		if _, err := parseID(c, "id"); err != nil {
			return err
		}
		if _, err := parseID(c, "commentId"); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name    string
		path    string
		status  int
		message string
	}{
		{"valid", "/posts/1/comments/2", http.StatusOK, ""},
		{"malformed post id", "/posts/abc/comments/2", http.StatusBadRequest, "Invalid post id"},
		{"zero post id", "/posts/0/comments/2", http.StatusBadRequest, "Invalid post id"},
		{"negative comment id", "/posts/1/comments/-3", http.StatusBadRequest, "Invalid comment id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body, _ := send(t, app, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Meta.Message)
				assert.Equal(t, tt.status, body.Meta.Status)
			}
		})
	}
}

// --- parsePagination ---

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		page, limit := parsePagination(c)
		return c.JSON(fiber.Map{"page": page, "limit": limit})
	})

	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 10},
		{"?page=3&limit=25", 3, 25},
		{"?page=abc&limit=xyz", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var got struct{ Page, Limit int }
			require.NoError(t, decodeJSON(resp, &got))
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.limit, got.Limit)
		})
	}
}

func TestParseBody_EmptyBodyIsRequired(t *testing.T) {
	_, app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, APIPrefix+"/auth/sign-in", nil)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, body, _ := send(t, app, req)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Request Body is required", body.Meta.Message)
}

func TestNotFound(t *testing.T) {
	_, app := newTestApp(t, nil)

	resp, body, raw := send(t, app, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Your request not found", body.Meta.Message)
	assert.Equal(t, http.StatusNotFound, body.Meta.Status)
	assert.Contains(t, string(raw), `"data":null`)
}
