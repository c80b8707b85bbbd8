package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minkgkyaw9899/m-blog-server/internal/config"
	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes selected by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do for a config.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

func normalizedSchemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		return SchemaModeHybrid
	}
	return mode
}

// schemaPolicy decides whether SQL migrations and AutoMigrate run.
// hybrid runs SQL everywhere and AutoMigrate outside production.
func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	mode := normalizedSchemaMode(cfg)
	prodLike := isProdLikeEnv(cfg.Env)

	switch mode {
	case SchemaModeSQL:
		return true, false, nil
	case SchemaModeAuto:
		if prodLike {
			return false, false, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		return false, true, nil
	case SchemaModeHybrid:
		return true, !prodLike, nil
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// AutoMigrate creates or updates tables for every persistent model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs SQL migrations and/or AutoMigrate according to the schema policy.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}

	if runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if runAuto {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", normalizedSchemaMode(cfg)), slog.String("env", cfg.Env))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports the policy and, when SQL migrations apply, which are pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               normalizedSchemaMode(cfg),
		Environment:        cfg.Env,
		WillRunSQL:         runSQL,
		WillRunAutoMigrate: runAuto,
	}

	if !runSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied
	status.PendingMigrations = pendingMigrations(applied, GetMigrations())

	return status, nil
}

func pendingMigrations(applied []int, registered []Migration) []Migration {
	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}
	var pending []Migration
	for _, m := range registered {
		if !appliedSet[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending
}

const counterDriftSQL = `SELECT COUNT(*) FROM posts p WHERE
	p.total_likes <> (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) OR
	p.total_comments <> (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)`

const repairCountersSQL = `UPDATE posts SET
	total_likes = (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id),
	total_comments = (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)`

// CounterDrift counts posts whose total_likes or total_comments disagree with
// the like and comment rows. Soft-deleted posts are included.
func CounterDrift(ctx context.Context, db *gorm.DB) (int64, error) {
	var drift int64
	if err := db.WithContext(ctx).Raw(counterDriftSQL).Scan(&drift).Error; err != nil {
		return 0, fmt.Errorf("count counter drift: %w", err)
	}
	return drift, nil
}

// RepairCounters recomputes total_likes and total_comments for every post and
// returns how many rows were rewritten.
func RepairCounters(ctx context.Context, db *gorm.DB) (int64, error) {
	result := db.WithContext(ctx).Exec(repairCountersSQL)
	if result.Error != nil {
		return 0, fmt.Errorf("repair post counters: %w", result.Error)
	}
	middleware.Logger.InfoContext(ctx, "post counters recomputed", slog.Int64("rows", result.RowsAffected))
	return result.RowsAffected, nil
}
