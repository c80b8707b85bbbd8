package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minkgkyaw9899/m-blog-server/internal/database"
	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers           int
	NumPosts           int
	MaxCommentsPerPost int
	MaxLikesPerPost    int
	// MaxDays spreads post creation times over the last MaxDays days.
	MaxDays     int
	ShouldClean bool
	// RandSeed makes a run reproducible when non-zero.
	RandSeed int64
	// BcryptCost overrides bcrypt.DefaultCost; tests use bcrypt.MinCost.
	BcryptCost int
}

// Result reports what a run created.
type Result struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Seeder populates the database with users, posts, comments and likes.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, opts: opts, factory: f}, nil
}

// ClearAll removes every seeded row. Children go first so foreign keys hold.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"comments", "likes", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	middleware.Logger.Info("seed data cleared")
	return nil
}

// Run creates the configured data set. Post counters are recomputed at the
// end so total_likes and total_comments always match the rows.
func (s *Seeder) Run() (*Result, error) {
	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	if len(users) == 0 {
		return &Result{}, nil
	}

	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		posts = append(posts, s.factory.BuildPost(users[s.factory.rng.Intn(len(users))]))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}

	result := &Result{Users: len(users), Posts: len(posts)}
	for _, post := range posts {
		if s.opts.MaxCommentsPerPost > 0 {
			n := s.factory.rng.Intn(s.opts.MaxCommentsPerPost + 1)
			for j := 0; j < n; j++ {
				if _, err := s.factory.CreateComment(users[s.factory.rng.Intn(len(users))], post); err != nil {
					return nil, fmt.Errorf("create comment: %w", err)
				}
				result.Comments++
			}
		}

		if s.opts.MaxLikesPerPost > 0 {
			n := s.factory.rng.Intn(min(s.opts.MaxLikesPerPost, len(users)) + 1)
			for _, idx := range s.factory.rng.Perm(len(users))[:n] {
				if err := s.factory.CreateLike(users[idx], post); err != nil {
					return nil, fmt.Errorf("create like: %w", err)
				}
				result.Likes++
			}
		}
	}

	if _, err := database.RepairCounters(context.Background(), s.db); err != nil {
		return nil, err
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", result.Users),
		slog.Int("posts", result.Posts),
		slog.Int("comments", result.Comments),
		slog.Int("likes", result.Likes),
	)
	return result, nil
}
