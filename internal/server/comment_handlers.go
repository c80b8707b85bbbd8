package server

import (
	"github.com/minkgkyaw9899/m-blog-server/internal/response"
	"github.com/minkgkyaw9899/m-blog-server/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/v1/posts/:id/comments
// @Summary List comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Envelope{data=[]response.CommentResponse}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID, userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Successfully get all comments", response.NewCommentResponses(comments))
}

// CreateComment handles POST /api/v1/posts/:id/comments
// @Summary Create comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.CommentInput true "Comment"
// @Success 200 {object} response.Envelope{data=response.CommentResponse}
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), postID, userID, req)
	if err != nil {
		return err
	}

	dto := response.NewCommentResponse(comment)
	s.publishBroadcastEvent(c.UserContext(), EventCommentCreated, dto)
	return response.Success(c, fiber.StatusOK, "Successfully create comment", dto)
}

// UpdateComment handles PATCH /api/v1/posts/:id/comments/:commentId
// @Summary Update comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param request body service.CommentInput true "Comment"
// @Success 200 {object} response.Envelope{data=response.CommentResponse}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/{commentId} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), commentID, postID, userID, req)
	if err != nil {
		return err
	}

	dto := response.NewCommentResponse(comment)
	s.publishBroadcastEvent(c.UserContext(), EventCommentUpdated, dto)
	return response.Success(c, fiber.StatusOK, "Successfully update comment", dto)
}

// DeleteComment handles DELETE /api/v1/posts/:id/comments/:commentId
// @Summary Delete comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}

	if err := s.commentService.DeleteComment(c.UserContext(), commentID, postID, userID); err != nil {
		return err
	}

	s.publishBroadcastEvent(c.UserContext(), EventCommentDeleted, fiber.Map{"id": commentID, "postId": postID})
	return c.SendStatus(fiber.StatusNoContent)
}
