// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrEmailRequired is returned by FindUserByEmail when no email is given.
var ErrEmailRequired = errors.New("email is required")

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err came from a unique constraint.
// It recognises the PostgreSQL SQLSTATE, GORM's translated error and
// the driver messages of postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "sqlstate 23505")
}

// selectAuthor limits a preloaded user to the fields embedded in responses.
// Soft-deleted authors are still loaded so their posts and comments keep an author.
func selectAuthor(db *gorm.DB) *gorm.DB {
	return db.Unscoped().Select("id", "name", "avatar")
}

func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
