package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/observability"

	"gorm.io/gorm"
)

// CreateCommentParams is the payload for CreateComment.
type CreateCommentParams struct {
	PostID  uint
	UserID  uint
	Comment string
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	FindAllComments(ctx context.Context, postID uint) ([]models.Comment, error)
	FindComment(ctx context.Context, id uint) (*models.Comment, error)
	CreateComment(ctx context.Context, params CreateCommentParams) (*models.Comment, error)
	UpdateComment(ctx context.Context, commentID, postID, userID uint, comment string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, postID, userID uint) (*models.Comment, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{
		db:  db,
		log: observability.NewRepoLogger("comments", middleware.Logger),
	}
}

func (r *commentRepository) FindAllComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := oldestFirst(r.db.WithContext(ctx)).
		Preload("User", selectAuthor).
		Where("post_id = ?", postID).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User", selectAuthor).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// CreateComment inserts the comment and bumps total_comments in one transaction.
func (r *commentRepository) CreateComment(ctx context.Context, params CreateCommentParams) (*models.Comment, error) {
	span, ctx := observability.TraceRepository(ctx, "CreateComment", "comments",
		observability.PostID(params.PostID), observability.UserID(params.UserID))
	defer span.End()

	comment := models.Comment{
		PostID:  params.PostID,
		UserID:  params.UserID,
		Comment: params.Comment,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).
			Where("id = ?", params.PostID).
			UpdateColumn("total_comments", gorm.Expr("total_comments + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Preload("User", selectAuthor).First(&comment, comment.ID).Error
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(observability.CommentID(comment.ID))

	r.log.LogCreate(ctx, slog.Any("comment_id", comment.ID), slog.Any("post_id", params.PostID))
	return &comment, nil
}

// UpdateComment changes the text of a comment owned by userID on postID.
// It returns nil when no such comment exists.
func (r *commentRepository) UpdateComment(ctx context.Context, commentID, postID, userID uint, text string) (*models.Comment, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND post_id = ? AND user_id = ?", commentID, postID, userID).
		Update("comment", text)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	r.log.LogUpdate(ctx, slog.Any("comment_id", commentID))
	return r.FindComment(ctx, commentID)
}

// DeleteComment removes a comment owned by userID on postID and decrements
// total_comments, floored at zero, in one transaction. It returns nil when
// nothing matched.
func (r *commentRepository) DeleteComment(ctx context.Context, commentID, postID, userID uint) (*models.Comment, error) {
	span, ctx := observability.TraceRepository(ctx, "DeleteComment", "comments",
		observability.CommentID(commentID), observability.PostID(postID))
	defer span.End()

	var comment models.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND post_id = ? AND user_id = ?", commentID, postID, userID).
			First(&comment).Error; err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("total_comments", gorm.Expr("CASE WHEN total_comments > 0 THEN total_comments - 1 ELSE 0 END")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.SetError(err)
		return nil, err
	}

	r.log.LogDelete(ctx, slog.Any("comment_id", commentID), slog.Any("post_id", postID))
	return &comment, nil
}
