package service

import (
	"context"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/observability"
	"github.com/minkgkyaw9899/m-blog-server/internal/repository"
	"github.com/minkgkyaw9899/m-blog-server/internal/validation"
)

const (
	commentNotFoundMessage  = "comment not found"
	notCommentAuthorMessage = "You are not the author of this comment"
)

// CommentInput is the body for creating or editing a comment.
type CommentInput struct {
	Comment string `json:"comment" validate:"required,min=1"`
}

type CommentService struct {
	commentRepo repository.CommentRepository
	posts       *PostService
}

func NewCommentService(commentRepo repository.CommentRepository, posts *PostService) *CommentService {
	return &CommentService{commentRepo: commentRepo, posts: posts}
}

// ListComments returns a visible post's comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID, userID uint) ([]models.Comment, error) {
	if _, err := s.posts.GetPost(ctx, postID, userID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.FindAllComments(ctx, postID)
	if err != nil {
		return nil, internal(err)
	}
	return comments, nil
}

func (s *CommentService) CreateComment(ctx context.Context, postID, userID uint, in CommentInput) (*models.Comment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPost(ctx, postID, userID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.CreateComment(ctx, repository.CreateCommentParams{
		PostID:  postID,
		UserID:  userID,
		Comment: in.Comment,
	})
	if err != nil {
		return nil, internal(err)
	}
	observability.PostInteractionsTotal.WithLabelValues("comment").Inc()
	return comment, nil
}

// ownedComment resolves a comment on a visible post and checks that userID wrote it.
func (s *CommentService) ownedComment(ctx context.Context, commentID, postID, userID uint) error {
	if _, err := s.posts.GetPost(ctx, postID, userID); err != nil {
		return err
	}
	comment, err := s.commentRepo.FindComment(ctx, commentID)
	if err != nil {
		return internal(err)
	}
	if comment == nil || comment.PostID != postID {
		return notFound(commentNotFoundMessage)
	}
	if comment.UserID != userID {
		return models.NewForbiddenError(notCommentAuthorMessage)
	}
	return nil
}

func (s *CommentService) UpdateComment(ctx context.Context, commentID, postID, userID uint, in CommentInput) (*models.Comment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ownedComment(ctx, commentID, postID, userID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.UpdateComment(ctx, commentID, postID, userID, in.Comment)
	if err != nil {
		return nil, internal(err)
	}
	if comment == nil {
		return nil, notFound(commentNotFoundMessage)
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, commentID, postID, userID uint) error {
	if err := s.ownedComment(ctx, commentID, postID, userID); err != nil {
		return err
	}

	deleted, err := s.commentRepo.DeleteComment(ctx, commentID, postID, userID)
	if err != nil {
		return internal(err)
	}
	if deleted == nil {
		return notFound(commentNotFoundMessage)
	}
	observability.PostInteractionsTotal.WithLabelValues("uncomment").Inc()
	return nil
}
