package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/observability"
	"github.com/minkgkyaw9899/m-blog-server/internal/validation"

	"gorm.io/gorm"
)

// CreateUserParams is the payload for CreateUser. Password must already be hashed.
type CreateUserParams struct {
	Name           string `json:"name" validate:"required,max=255"`
	Email          string `json:"email" validate:"required,email,max=255"`
	HashedPassword string `json:"password" validate:"required"`
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: observability.NewRepoLogger("users", middleware.Logger),
	}
}

// FindUserByEmail returns the user with email, or nil when there is none.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser validates params and inserts the user. A duplicate email
// surfaces as an error for which IsUniqueViolation is true.
func (r *userRepository) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	user := models.User{
		Name:     params.Name,
		Email:    params.Email,
		Password: params.HashedPassword,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	r.log.LogCreate(ctx, slog.Any("user_id", user.ID))
	return &user, nil
}
