// Package plancache persists, across client restarts, the XASL ids the
// server has previously returned from qmgr_prepare_query for a given SQL
// hash text and user — so a client that restarts can retry
// qmgr_execute_query with a remembered plan before paying for a full
// prepare. Backed by sqlite (single client process) or Postgres (a plan
// cache shared by several client processes against the same server),
// selected the same way the teacher's control-plane store picks its
// backend.
package plancache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/dbrt/pkg/config"
)

// Store is the plan cache, backed by one GORM database connection.
type Store struct {
	db *gorm.DB
}

// Open connects to the backend named by cfg.DatabaseType, migrates its
// schema, and returns a ready Store.
func Open(ctx context.Context, cfg config.PlanCacheConfig) (*Store, error) {
	var dialector gorm.Dialector

	switch cfg.DatabaseType {
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "plancache.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil && filepath.Dir(path) != "." {
			return nil, fmt.Errorf("plancache: create directory for %s: %w", path, err)
		}
		dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)

	case "postgres":
		dsn := postgresDSN(cfg)
		if err := runPostgresMigrations(ctx, dsn); err != nil {
			return nil, fmt.Errorf("plancache: migrate: %w", err)
		}
		dialector = postgres.Open(dsn)

	default:
		return nil, fmt.Errorf("plancache: unsupported database type %q", cfg.DatabaseType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("plancache: connect: %w", err)
	}

	if cfg.DatabaseType == "sqlite" {
		if err := db.AutoMigrate(&Entry{}); err != nil {
			return nil, fmt.Errorf("plancache: auto-migrate: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func postgresDSN(cfg config.PlanCacheConfig) string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)
	if cfg.SSLMode != "" {
		dsn += " sslmode=" + cfg.SSLMode
	}
	return dsn
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the cached XASL id for (sqlHash, userOID), if any.
func (s *Store) Get(ctx context.Context, sqlHash, userOID string) (*Entry, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).
		Where("sql_hash = ? AND user_oid = ?", sqlHash, userOID).
		First(&e).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("plancache: get: %w", err)
	}

	e.LastUsedAt = time.Now()
	e.HitCount++
	if err := s.db.WithContext(ctx).Model(&e).
		Select("LastUsedAt", "HitCount").
		Updates(map[string]any{"last_used_at": e.LastUsedAt, "hit_count": e.HitCount}).Error; err != nil {
		return nil, false, fmt.Errorf("plancache: bump hit count: %w", err)
	}
	return &e, true, nil
}

// Put upserts the plan entry for (sqlHash, userOID), mirroring a fresh
// qmgr_prepare_query result.
func (s *Store) Put(ctx context.Context, sqlHash, userOID string, xaslID []byte, planText string) error {
	now := time.Now()
	e := Entry{
		SQLHash:    sqlHash,
		UserOID:    userOID,
		XASLID:     xaslID,
		PlanText:   planText,
		CreatedAt:  now,
		LastUsedAt: now,
		HitCount:   0,
	}

	return s.db.WithContext(ctx).
		Where("sql_hash = ? AND user_oid = ?", sqlHash, userOID).
		Assign(map[string]any{"xasl_id": xaslID, "plan_text": planText, "last_used_at": now}).
		FirstOrCreate(&e).Error
}

// Drop removes one cache entry, mirroring qmgr_drop_query_plan.
func (s *Store) Drop(ctx context.Context, sqlHash, userOID string) error {
	return s.db.WithContext(ctx).
		Where("sql_hash = ? AND user_oid = ?", sqlHash, userOID).
		Delete(&Entry{}).Error
}

// DropAll flushes the whole cache, mirroring qmgr_drop_all_query_plans.
func (s *Store) DropAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&Entry{}).Error
}
