package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/observability"
	"github.com/minkgkyaw9899/m-blog-server/internal/repository"
	"github.com/minkgkyaw9899/m-blog-server/internal/response"
	"github.com/minkgkyaw9899/m-blog-server/internal/validation"
)

const (
	postNotFoundMessage  = "post not found"
	notPostAuthorMessage = "You are not the author of this post"
)

var errImagesDisabled = errors.New("image uploads are not configured")

// CreatePostInput is the create-post request body.
type CreatePostInput struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content" validate:"required,min=1"`
}

// UpdatePostInput is the partial update body. Omitted fields stay unchanged.
type UpdatePostInput struct {
	Title   *string `json:"title" validate:"omitnil,min=1,max=255"`
	Content *string `json:"content" validate:"omitnil,min=1"`
}

// PostPage is one page of the feed plus the numbers needed to paginate it.
type PostPage struct {
	Posts []*models.Post
	Page  int
	Limit int
	Total int64
}

type PostService struct {
	postRepo repository.PostRepository
	images   *ImageService
}

func NewPostService(postRepo repository.PostRepository, images *ImageService) *PostService {
	return &PostService{postRepo: postRepo, images: images}
}

func (s *PostService) ListPosts(ctx context.Context, page, limit int, userID uint) (*PostPage, error) {
	page, limit = response.NormalizePage(page, limit)

	total, err := s.postRepo.CountPosts(ctx)
	if err != nil {
		return nil, internal(err)
	}
	if int64(page) > response.TotalPages(total, limit) {
		return &PostPage{Posts: []*models.Post{}, Page: page, Limit: limit, Total: total}, nil
	}
	posts, err := s.postRepo.FindAllPosts(ctx, repository.FindAllPostsParams{
		Page:   page,
		Limit:  limit,
		UserID: userID,
	})
	if err != nil {
		return nil, internal(err)
	}
	return &PostPage{Posts: posts, Page: page, Limit: limit, Total: total}, nil
}

// GetPost returns a visible post or a not-found error. Soft-deleted posts are
// never returned by the repository, so they end up here as not found too.
func (s *PostService) GetPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.postRepo.FindPost(ctx, postID, userID)
	if err != nil {
		return nil, internal(err)
	}
	if post == nil {
		return nil, notFound(postNotFoundMessage)
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput, authorID uint) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	post, err := s.postRepo.CreateOnePost(ctx, repository.CreatePostParams{
		Title:   in.Title,
		Content: in.Content,
	}, authorID)
	if err != nil {
		return nil, internal(err)
	}
	if post == nil {
		return nil, models.NewConflictError("Failed to create post")
	}
	return post, nil
}

// ownedPost loads a visible post and checks that userID wrote it.
func (s *PostService) ownedPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, models.NewForbiddenError(notPostAuthorMessage)
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, postID, userID uint, in UpdatePostInput) (*models.Post, error) {
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.ownedPost(ctx, postID, userID); err != nil {
		return nil, err
	}

	post, err := s.postRepo.UpdatePost(ctx, postID, repository.UpdatePostParams{
		Title:   in.Title,
		Content: in.Content,
	}, userID)
	if err != nil {
		return nil, internal(err)
	}
	if post == nil {
		return nil, notFound(postNotFoundMessage)
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	if _, err := s.ownedPost(ctx, postID, userID); err != nil {
		return err
	}

	deleted, err := s.postRepo.DeletePost(ctx, postID)
	if err != nil {
		return internal(err)
	}
	if deleted == nil {
		return notFound(postNotFoundMessage)
	}
	return nil
}

// LikePost records userID's like. Liking twice succeeds and changes nothing;
// changed reports whether this call added the like.
func (s *PostService) LikePost(ctx context.Context, postID, userID uint) (post *models.Post, changed bool, err error) {
	if _, err = s.GetPost(ctx, postID, userID); err != nil {
		return nil, false, err
	}
	changed, err = s.postRepo.LikePost(ctx, postID, userID)
	if err != nil {
		return nil, false, internal(err)
	}
	if changed {
		observability.PostInteractionsTotal.WithLabelValues("like").Inc()
	}
	post, err = s.GetPost(ctx, postID, userID)
	return post, changed, err
}

// UnlikePost removes userID's like. Unliking a post that is not liked succeeds.
func (s *PostService) UnlikePost(ctx context.Context, postID, userID uint) (post *models.Post, changed bool, err error) {
	if _, err = s.GetPost(ctx, postID, userID); err != nil {
		return nil, false, err
	}
	changed, err = s.postRepo.UnlikePost(ctx, postID, userID)
	if err != nil {
		return nil, false, internal(err)
	}
	if changed {
		observability.PostInteractionsTotal.WithLabelValues("unlike").Inc()
	}
	post, err = s.GetPost(ctx, postID, userID)
	return post, changed, err
}

// AttachImage stores an uploaded image and sets it as the post image,
// replacing and removing any previous upload.
func (s *PostService) AttachImage(ctx context.Context, postID, userID uint, in UploadImageInput) (*models.Post, error) {
	if s.images == nil {
		return nil, models.NewInternalError(errImagesDisabled)
	}
	current, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Process(ctx, in)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.UpdatePost(ctx, postID, repository.UpdatePostParams{Image: &url}, userID)
	if err != nil || post == nil {
		s.images.Remove(url)
		if err != nil {
			return nil, internal(err)
		}
		return nil, notFound(postNotFoundMessage)
	}

	if current.Image != nil && *current.Image != url {
		s.images.Remove(*current.Image)
	}
	middleware.Logger.InfoContext(ctx, "post image attached",
		slog.Any("post_id", postID), slog.String("image", url))
	return post, nil
}
