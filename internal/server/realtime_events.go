package server

import (
	"context"
	"log/slog"

	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/notifications"
	"github.com/minkgkyaw9899/m-blog-server/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const (
	EventPostCreated    = "post_created"
	EventPostUpdated    = "post_updated"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventCommentCreated = "comment_created"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
)

func reactionPayload(postID, userID uint, totalLikes int) fiber.Map {
	return fiber.Map{
		"postId":     postID,
		"userId":     userID,
		"totalLikes": totalLikes,
	}
}

// publishBroadcastEvent fans an event out to every connected client. With Redis
// the event goes through pub/sub so all instances see it; without Redis only
// this instance's clients are reached. Failures are logged and never fail the request.
func (s *Server) publishBroadcastEvent(ctx context.Context, eventType string, payload any) {
	msg, err := notifications.Event{Type: eventType, Payload: payload}.Encode()
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode event",
			slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()

	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(ctx, msg); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish event, delivering locally",
				slog.String("event_type", eventType), slog.String("error", err.Error()))
			s.hub.BroadcastAll(msg)
		}
		return
	}
	s.hub.BroadcastAll(msg)
}
