package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minkgkyaw9899/m-blog-server/internal/notifications"
)

func receive(t *testing.T, client *notifications.Client) notifications.Event {
	t.Helper()
	select {
	case msg := <-client.Send:
		var ev struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(msg, &ev))
		return notifications.Event{Type: ev.Type, Payload: ev.Payload}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return notifications.Event{}
	}
}

func TestPublishBroadcastEvent_LocalDelivery(t *testing.T) {
	s, app := newTestApp(t, nil)
	token, _ := signUp(t, app, "alice")

	client, err := s.hub.Register(99, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.hub.UnregisterClient(client) })

	created := createPost(t, app, token, "breaking news")

	ev := receive(t, client)
	assert.Equal(t, EventPostCreated, ev.Type)

	var payload postData
	require.NoError(t, json.Unmarshal(ev.Payload.(json.RawMessage), &payload))
	assert.Equal(t, created.ID, payload.ID)
}

func TestPublishBroadcastEvent_ThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, app := newTestApp(t, rdb)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, s.hub.StartWiring(ctx, s.notifier))

	client, err := s.hub.Register(99, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.hub.UnregisterClient(client) })

	token, _ := signUp(t, app, "alice")
	post := createPost(t, app, token, "relayed")
	assert.Equal(t, EventPostCreated, receive(t, client).Type)

	resp, _, _ := doJSON(t, app, http.MethodPost, APIPrefix+"/posts/"+itoa(post.ID)+"/like", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ev := receive(t, client)
	assert.Equal(t, EventPostLiked, ev.Type)
	assert.JSONEq(t, `{"postId":`+itoa(post.ID)+`,"userId":1,"totalLikes":1}`, string(ev.Payload.(json.RawMessage)))
}

func TestPublishBroadcastEvent_UnchangedLikeIsSilent(t *testing.T) {
	s, app := newTestApp(t, nil)
	token, _ := signUp(t, app, "alice")
	post := createPost(t, app, token, "quiet")

	client, err := s.hub.Register(99, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.hub.UnregisterClient(client) })

	resp, _, _ := doJSON(t, app, http.MethodPost, APIPrefix+"/posts/"+itoa(post.ID)+"/un-like", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case msg := <-client.Send:
		t.Fatalf("unexpected event %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebsocketRoute_RequiresUpgrade(t *testing.T) {
	_, app := newTestApp(t, nil)
	token, _ := signUp(t, app, "alice")

	resp, _, _ := send(t, app, httptest.NewRequest(http.MethodGet, APIPrefix+"/ws?token="+token, nil))
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)

	resp, _, _ = send(t, app, httptest.NewRequest(http.MethodGet, APIPrefix+"/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
