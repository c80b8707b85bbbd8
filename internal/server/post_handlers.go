package server

import (
	"github.com/minkgkyaw9899/m-blog-server/internal/response"
	"github.com/minkgkyaw9899/m-blog-server/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/v1/posts
// @Summary List posts
// @Description Newest first. Soft-deleted posts are never listed.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} response.PaginatedEnvelope{data=[]response.PostResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, limit := parsePagination(c)

	result, err := s.postService.ListPosts(c.UserContext(), page, limit, userID)
	if err != nil {
		return err
	}
	return response.Paginated(c, "Successfully get all posts",
		response.NewPostResponses(result.Posts), result.Page, result.Limit, result.Total)
}

// CreatePost handles POST /api/v1/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 200 {object} response.Envelope{data=response.PostResponse}
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	post, err := s.postService.CreatePost(c.UserContext(), req, userID)
	if err != nil {
		return err
	}

	dto := response.NewPostResponse(post)
	s.publishBroadcastEvent(c.UserContext(), EventPostCreated, dto)
	return response.Success(c, fiber.StatusOK, "Successfully create post", dto)
}

// GetPost handles GET /api/v1/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Envelope{data=response.PostResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Successfully get post", response.NewPostResponse(post))
}

// UpdatePost handles PATCH /api/v1/posts/:id
// @Summary Update post
// @Description Only supplied fields change. Only the author may update.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Fields to change"
// @Success 200 {object} response.Envelope{data=response.PostResponse}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdatePostInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	post, err := s.postService.UpdatePost(c.UserContext(), postID, userID, req)
	if err != nil {
		return err
	}

	dto := response.NewPostResponse(post)
	s.publishBroadcastEvent(c.UserContext(), EventPostUpdated, dto)
	return response.Success(c, fiber.StatusOK, "Successfully update post", dto)
}

// DeletePost handles DELETE /api/v1/posts/:id
// @Summary Delete post
// @Description Soft delete. A second delete returns 404.
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := s.postService.DeletePost(c.UserContext(), postID, userID); err != nil {
		return err
	}

	s.publishBroadcastEvent(c.UserContext(), EventPostDeleted, fiber.Map{"id": postID})
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/v1/posts/:id/like
// @Summary Like post
// @Description Idempotent: liking an already liked post succeeds without change.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Envelope{data=response.PostResponse}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, changed, err := s.postService.LikePost(c.UserContext(), postID, userID)
	if err != nil {
		return err
	}
	if changed {
		s.publishBroadcastEvent(c.UserContext(), EventPostLiked, reactionPayload(post.ID, userID, post.TotalLikes))
	}
	return response.Success(c, fiber.StatusOK, "Successfully like post", response.NewPostResponse(post))
}

// UnlikePost handles POST /api/v1/posts/:id/un-like
// @Summary Unlike post
// @Description Idempotent: unliking a post that is not liked succeeds without change.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Envelope{data=response.PostResponse}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/un-like [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, changed, err := s.postService.UnlikePost(c.UserContext(), postID, userID)
	if err != nil {
		return err
	}
	if changed {
		s.publishBroadcastEvent(c.UserContext(), EventPostUnliked, reactionPayload(post.ID, userID, post.TotalLikes))
	}
	return response.Success(c, fiber.StatusOK, "Successfully unlike post", response.NewPostResponse(post))
}
