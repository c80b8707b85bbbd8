package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post. A non-null DeletedAt marks it as soft-deleted;
// GORM then excludes it from every scoped query.
type Post struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Title    string  `gorm:"size:255;not null;index:title_idx" json:"title"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	Image    *string `gorm:"size:255" json:"image"`
	AuthorID uint    `gorm:"not null;index" json:"author_id"`
	Author   User    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	// TotalLikes and TotalComments are maintained by the like/comment transactions.
	TotalLikes    int            `gorm:"not null;default:0" json:"total_likes"`
	TotalComments int            `gorm:"not null;default:0" json:"total_comments"`
	Likes         []Like         `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"likes,omitempty"`
	Comments      []Comment      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsLiked reports whether the preloaded likes contain the current user's like.
// Repositories preload only that user's like, so any entry means true.
func (p *Post) IsLiked() bool {
	return len(p.Likes) > 0
}
