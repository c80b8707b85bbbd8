package response

import (
	"time"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"
)

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthorResponse is the reduced user shape embedded in posts and comments.
type AuthorResponse struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID        uint           `json:"id"`
	Comment   string         `json:"comment"`
	PostID    uint           `json:"postId"`
	User      AuthorResponse `json:"user"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// PostResponse is the public view of a post as seen by the requesting user.
type PostResponse struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Image         *string           `json:"image"`
	Author        AuthorResponse    `json:"author"`
	TotalLikes    int               `json:"totalLikes"`
	TotalComments int               `json:"totalComments"`
	IsLiked       bool              `json:"isLiked"`
	Comments      []CommentResponse `json:"comments"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// NewUserResponse converts a user entity.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewAuthorResponse converts a user entity into its embedded author shape.
func NewAuthorResponse(u *models.User) AuthorResponse {
	return AuthorResponse{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// NewCommentResponse converts a comment entity with its preloaded user.
func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Comment:   c.Comment,
		PostID:    c.PostID,
		User:      NewAuthorResponse(&c.User),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCommentResponses converts a list of comments. The result is never nil.
func NewCommentResponses(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, NewCommentResponse(&comments[i]))
	}
	return out
}

// NewPostResponse converts a post entity. isLiked is derived from the
// requesting user's preloaded like.
func NewPostResponse(p *models.Post) PostResponse {
	return PostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Image:         p.Image,
		Author:        NewAuthorResponse(&p.Author),
		TotalLikes:    p.TotalLikes,
		TotalComments: p.TotalComments,
		IsLiked:       p.IsLiked(),
		Comments:      NewCommentResponses(p.Comments),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewPostResponses converts a page of posts. The result is never nil.
func NewPostResponses(posts []*models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostResponse(p))
	}
	return out
}

// NewAuthResponse pairs a user with the issued token.
func NewAuthResponse(u *models.User, token string) AuthResponse {
	return AuthResponse{User: NewUserResponse(u), Token: token}
}
