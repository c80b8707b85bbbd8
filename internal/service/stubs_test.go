package service

import (
	"context"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/repository"

	"github.com/stretchr/testify/mock"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	countFn    func(context.Context) (int64, error)
	createFn   func(context.Context, repository.CreatePostParams, uint) (*models.Post, error)
	findAllFn  func(context.Context, repository.FindAllPostsParams) ([]*models.Post, error)
	findFn     func(context.Context, uint, uint) (*models.Post, error)
	updateFn   func(context.Context, uint, repository.UpdatePostParams, uint) (*models.Post, error)
	deleteFn   func(context.Context, uint) (*models.Post, error)
	isLikedFn  func(context.Context, uint, uint) (bool, error)
	likeFn     func(context.Context, uint, uint) (bool, error)
	unlikeFn   func(context.Context, uint, uint) (bool, error)
	countLikes int64
	countComms int64
}

func (s *postRepoStub) CountPosts(ctx context.Context) (int64, error) { return s.countFn(ctx) }
func (s *postRepoStub) CreateOnePost(ctx context.Context, p repository.CreatePostParams, authorID uint) (*models.Post, error) {
	return s.createFn(ctx, p, authorID)
}
func (s *postRepoStub) FindAllPosts(ctx context.Context, p repository.FindAllPostsParams) ([]*models.Post, error) {
	return s.findAllFn(ctx, p)
}
func (s *postRepoStub) FindPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	return s.findFn(ctx, postID, userID)
}
func (s *postRepoStub) UpdatePost(ctx context.Context, id uint, p repository.UpdatePostParams, userID uint) (*models.Post, error) {
	return s.updateFn(ctx, id, p, userID)
}
func (s *postRepoStub) DeletePost(ctx context.Context, id uint) (*models.Post, error) {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) CountLikes(context.Context, uint) (int64, error)    { return s.countLikes, nil }
func (s *postRepoStub) CountComments(context.Context, uint) (int64, error) { return s.countComms, nil }
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) LikePost(ctx context.Context, postID, userID uint) (bool, error) {
	return s.likeFn(ctx, postID, userID)
}
func (s *postRepoStub) UnlikePost(ctx context.Context, postID, userID uint) (bool, error) {
	return s.unlikeFn(ctx, postID, userID)
}

// noopPostRepo returns a stub where post 1 exists and is written by user 1.
func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		countFn: func(context.Context) (int64, error) { return 0, nil },
		createFn: func(_ context.Context, p repository.CreatePostParams, authorID uint) (*models.Post, error) {
			return &models.Post{ID: 1, Title: p.Title, Content: p.Content, AuthorID: authorID}, nil
		},
		findAllFn: func(context.Context, repository.FindAllPostsParams) ([]*models.Post, error) { return nil, nil },
		findFn: func(_ context.Context, postID, _ uint) (*models.Post, error) {
			if postID != 1 {
				return nil, nil
			}
			return &models.Post{ID: 1, Title: "t", Content: "c", AuthorID: 1}, nil
		},
		updateFn: func(_ context.Context, id uint, p repository.UpdatePostParams, _ uint) (*models.Post, error) {
			post := &models.Post{ID: id, Title: "t", Content: "c", AuthorID: 1}
			if p.Title != nil {
				post.Title = *p.Title
			}
			if p.Content != nil {
				post.Content = *p.Content
			}
			post.Image = p.Image
			return post, nil
		},
		deleteFn:  func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		isLikedFn: func(context.Context, uint, uint) (bool, error) { return false, nil },
		likeFn:    func(context.Context, uint, uint) (bool, error) { return true, nil },
		unlikeFn:  func(context.Context, uint, uint) (bool, error) { return true, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	findAllFn func(context.Context, uint) ([]models.Comment, error)
	findFn    func(context.Context, uint) (*models.Comment, error)
	createFn  func(context.Context, repository.CreateCommentParams) (*models.Comment, error)
	updateFn  func(context.Context, uint, uint, uint, string) (*models.Comment, error)
	deleteFn  func(context.Context, uint, uint, uint) (*models.Comment, error)
}

func (s *commentRepoStub) FindAllComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.findAllFn(ctx, postID)
}
func (s *commentRepoStub) FindComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.findFn(ctx, id)
}
func (s *commentRepoStub) CreateComment(ctx context.Context, p repository.CreateCommentParams) (*models.Comment, error) {
	return s.createFn(ctx, p)
}
func (s *commentRepoStub) UpdateComment(ctx context.Context, commentID, postID, userID uint, text string) (*models.Comment, error) {
	return s.updateFn(ctx, commentID, postID, userID, text)
}
func (s *commentRepoStub) DeleteComment(ctx context.Context, commentID, postID, userID uint) (*models.Comment, error) {
	return s.deleteFn(ctx, commentID, postID, userID)
}

// userRepoMock is a testify mock for repository.UserRepository.
type userRepoMock struct {
	mock.Mock
}

func (m *userRepoMock) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *userRepoMock) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *userRepoMock) CreateUser(ctx context.Context, params repository.CreateUserParams) (*models.User, error) {
	args := m.Called(ctx, params)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func strPtr(s string) *string { return &s }
