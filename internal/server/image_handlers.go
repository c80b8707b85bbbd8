package server

import (
	"io"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/response"
	"github.com/minkgkyaw9899/m-blog-server/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadPostImage handles POST /api/v1/posts/:id/image
// @Summary Upload post image
// @Description Accepts jpeg, jpg, png or webp up to 5MB. Stored as WebP, at most 1440px per side.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param image formData file true "Image file"
// @Success 200 {object} response.Envelope{data=response.PostResponse}
// @Failure 403 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /posts/{id}/image [post]
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return models.NewValidationError("image field is required")
	}

	src, err := file.Open()
	if err != nil {
		return models.NewBadRequestError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.NewBadRequestError("Unable to read uploaded file")
	}

	post, err := s.postService.AttachImage(c.UserContext(), postID, userID, service.UploadImageInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return err
	}

	dto := response.NewPostResponse(post)
	s.publishBroadcastEvent(c.UserContext(), EventPostUpdated, dto)
	return response.Success(c, fiber.StatusOK, "Successfully upload post image", dto)
}
