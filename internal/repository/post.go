package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/observability"
	"github.com/minkgkyaw9899/m-blog-server/internal/response"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatePostParams is the payload for CreateOnePost.
type CreatePostParams struct {
	Title   string
	Content string
	Image   *string
}

// UpdatePostParams holds the fields a partial update may change. Nil means unchanged.
type UpdatePostParams struct {
	Title   *string
	Content *string
	Image   *string
}

// FindAllPostsParams selects one page of the feed as seen by UserID.
type FindAllPostsParams struct {
	Page   int
	Limit  int
	UserID uint
}

// PostRepository defines the interface for post data operations.
// Soft-deleted posts are invisible to every method.
type PostRepository interface {
	CountPosts(ctx context.Context) (int64, error)
	CreateOnePost(ctx context.Context, params CreatePostParams, authorID uint) (*models.Post, error)
	FindAllPosts(ctx context.Context, params FindAllPostsParams) ([]*models.Post, error)
	FindPost(ctx context.Context, postID, userID uint) (*models.Post, error)
	UpdatePost(ctx context.Context, id uint, params UpdatePostParams, userID uint) (*models.Post, error)
	DeletePost(ctx context.Context, id uint) (*models.Post, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
	CountComments(ctx context.Context, postID uint) (int64, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	LikePost(ctx context.Context, postID, userID uint) (bool, error)
	UnlikePost(ctx context.Context, postID, userID uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:  db,
		log: observability.NewRepoLogger("posts", middleware.Logger),
	}
}

// withDetails preloads the author, only userID's like and the comments with their authors.
func withDetails(db *gorm.DB, userID uint) *gorm.DB {
	return db.
		Preload("Author", selectAuthor).
		Preload("Likes", "user_id = ?", userID).
		Preload("Comments", oldestFirst).
		Preload("Comments.User", selectAuthor)
}

func (r *postRepository) CountPosts(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error
	return total, err
}

func (r *postRepository) CreateOnePost(ctx context.Context, params CreatePostParams, authorID uint) (*models.Post, error) {
	post := models.Post{
		Title:    params.Title,
		Content:  params.Content,
		Image:    params.Image,
		AuthorID: authorID,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&post)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || post.ID == 0 {
		return nil, nil
	}

	r.log.LogCreate(ctx, slog.Any("post_id", post.ID), slog.Any("author_id", authorID))
	return r.FindPost(ctx, post.ID, authorID)
}

func (r *postRepository) FindAllPosts(ctx context.Context, params FindAllPostsParams) ([]*models.Post, error) {
	span, ctx := observability.TraceRepository(ctx, "FindAllPosts", "posts", observability.UserID(params.UserID))
	defer span.End()

	page, limit := response.NormalizePage(params.Page, params.Limit)

	var posts []*models.Post
	err := withDetails(r.db.WithContext(ctx), params.UserID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(response.Offset(page, limit)).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) FindPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	span, ctx := observability.TraceRepository(ctx, "FindPost", "posts", observability.PostID(postID))
	defer span.End()

	var post models.Post
	if err := withDetails(r.db.WithContext(ctx), userID).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.SetError(err)
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) UpdatePost(ctx context.Context, id uint, params UpdatePostParams, userID uint) (*models.Post, error) {
	updates := map[string]interface{}{}
	if params.Title != nil {
		updates["title"] = *params.Title
	}
	if params.Content != nil {
		updates["content"] = *params.Content
	}
	if params.Image != nil {
		updates["image"] = *params.Image
	}
	if len(updates) == 0 {
		return r.FindPost(ctx, id, userID)
	}

	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	r.log.LogUpdate(ctx, slog.Any("post_id", id), slog.Int("fields", len(updates)))
	return r.FindPost(ctx, id, userID)
}

func (r *postRepository) DeletePost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return err
		}
		result := tx.Delete(&post)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.log.LogDelete(ctx, slog.Any("post_id", id))
	return &post, nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *postRepository) CountComments(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LikePost inserts the like and bumps total_likes in one transaction.
// It reports false when the like already existed.
func (r *postRepository) LikePost(ctx context.Context, postID, userID uint) (bool, error) {
	span, ctx := observability.TraceRepository(ctx, "LikePost", "likes",
		observability.PostID(postID), observability.UserID(userID))
	defer span.End()

	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := models.Like{UserID: userID, PostID: postID}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&like)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("total_likes", gorm.Expr("total_likes + ?", 1)).Error
	})
	if err != nil {
		span.SetError(err)
		return false, err
	}
	return changed, nil
}

// UnlikePost removes the like and decrements total_likes in one transaction.
// It reports false when there was no like to remove.
func (r *postRepository) UnlikePost(ctx context.Context, postID, userID uint) (bool, error) {
	span, ctx := observability.TraceRepository(ctx, "UnlikePost", "likes",
		observability.PostID(postID), observability.UserID(userID))
	defer span.End()

	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("total_likes", gorm.Expr("CASE WHEN total_likes > 0 THEN total_likes - 1 ELSE 0 END")).Error
	})
	if err != nil {
		span.SetError(err)
		return false, err
	}
	return changed, nil
}
