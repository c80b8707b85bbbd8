package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	_, app := newTestApp(t, nil)

	resp, body, _ := doJSON(t, app, http.MethodGet, APIPrefix+"/check-health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "How are you?", body.Meta.Message)
	assert.JSONEq(t, `{"health":"Good"}`, string(body.Data))
}

type readiness struct {
	Status string `json:"status"`
	Checks struct {
		Database string `json:"database"`
		Redis    string `json:"redis"`
	} `json:"checks"`
}

func TestReadinessCheck(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		_, app := newTestApp(t, nil)
		resp, _, raw := send(t, app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got readiness
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "healthy", got.Status)
		assert.Equal(t, "disabled", got.Checks.Redis)
	})

	t.Run("redis down is degraded", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = rdb.Close() })

		_, app := newTestApp(t, rdb)
		mr.Close()

		resp, _, raw := send(t, app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got readiness
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "degraded", got.Status)
		assert.Equal(t, "healthy", got.Checks.Database)
		assert.Equal(t, "unhealthy", got.Checks.Redis)
	})

	t.Run("database down", func(t *testing.T) {
		s, app := newTestApp(t, nil)
		sqlDB, err := s.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		resp, _, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestLivenessCheck(t *testing.T) {
	_, app := newTestApp(t, nil)
	resp, _, raw := send(t, app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"status":"up"`)
}
