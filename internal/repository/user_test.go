package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"
)

func TestUserRepository_FindUserByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, "alice")

	_, err := repo.FindUserByEmail(ctx, "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	user, err := repo.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Name)

	missing, err := repo.FindUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_CreateUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, CreateUserParams{Name: "Alice", Email: "alice@example.com", HashedPassword: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	byID, err := repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	none, err := repo.FindUserByID(ctx, 424242)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, CreateUserParams{Name: "Alice", Email: "dup@example.com", HashedPassword: "hash"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, CreateUserParams{Name: "Other", Email: "dup@example.com", HashedPassword: "hash"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_CreateUser_DuplicateOfSoftDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	old := seedUser(t, db, "ghost")
	require.NoError(t, db.Delete(old).Error)

	_, err := repo.CreateUser(ctx, CreateUserParams{Name: "New", Email: "ghost@example.com", HashedPassword: "hash"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestUserRepository_CreateUser_ValidatesPayload(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.CreateUser(context.Background(), CreateUserParams{Name: "A", Email: "not-an-email", HashedPassword: "hash"})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, "Invalid email format", appErr.Message)
}

func TestUserRepository_CreateUser_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "email_idx"})
	mock.ExpectRollback()

	_, err := repo.CreateUser(context.Background(), CreateUserParams{Name: "A", Email: "a@example.com", HashedPassword: "hash"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pg unique", &pgconn.PgError{Code: "23505"}, true},
		{"pg fk", &pgconn.PgError{Code: "23503"}, false},
		{"wrapped pg unique", errors.Join(errors.New("ctx"), &pgconn.PgError{Code: "23505"}), true},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), true},
		{"postgres message", errors.New(`duplicate key value violates unique constraint "email_idx"`), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestPostRepository_CountPosts_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE "posts"."deleted_at" IS NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.CountPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
