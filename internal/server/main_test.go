package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/minkgkyaw9899/m-blog-server/internal/config"
	"github.com/minkgkyaw9899/m-blog-server/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

const testSecret = "test_secret"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret:            testSecret,
		JWTExpiresInHours:    1,
		UploadDir:            t.TempDir(),
		ImageMaxUploadSizeMB: 5,
		RateLimitMax:         1000,
		Env:                  "test",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:server_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// newTestApp builds a full application on sqlite. rdb may be nil.
func newTestApp(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	s, err := NewServerWithDeps(testConfig(t), setupTestDB(t), rdb)
	require.NoError(t, err)
	return s, s.NewApp()
}

type apiResponse struct {
	Meta struct {
		Status      int    `json:"status"`
		Message     string `json:"message"`
		Total       int64  `json:"total"`
		Page        int    `json:"page"`
		Limit       int    `json:"limit"`
		Current     int    `json:"current"`
		HasNextPage bool   `json:"hasNextPage"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, apiResponse, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, apiResponse, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var parsed apiResponse
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed, raw
}

type authData struct {
	User struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

// signUp registers name and returns its token and id.
func signUp(t *testing.T, app *fiber.App, name string) (string, uint) {
	t.Helper()
	resp, body, raw := doJSON(t, app, http.MethodPost, APIPrefix+"/auth/sign-up", "", fiber.Map{
		"name":            name,
		"email":           name + "@example.com",
		"password":        "secret123",
		"confirmPassword": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var data authData
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token, data.User.ID
}

type postData struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Image         *string `json:"image"`
	TotalLikes    int     `json:"totalLikes"`
	TotalComments int     `json:"totalComments"`
	IsLiked       bool    `json:"isLiked"`
	Author        struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"author"`
	Comments []commentData `json:"comments"`
}

type commentData struct {
	ID      uint   `json:"id"`
	Comment string `json:"comment"`
	PostID  uint   `json:"postId"`
	User    struct {
		ID uint `json:"id"`
	} `json:"user"`
}

func createPost(t *testing.T, app *fiber.App, token, title string) postData {
	t.Helper()
	resp, body, raw := doJSON(t, app, http.MethodPost, APIPrefix+"/posts", token, fiber.Map{
		"title":   title,
		"content": "content of " + title,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var p postData
	require.NoError(t, json.Unmarshal(body.Data, &p))
	return p
}

func decodeJSON(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
