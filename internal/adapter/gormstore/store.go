// Package gormstore persists panchayats, rainfall readings, and alert
// subscriptions in a relational database through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store implements the seeding and dashboard repositories on a *gorm.DB.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to the configured driver ("sqlite" or "mysql").
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		if err := ensureSQLiteDirectory(dsn); err != nil {
			return nil, fmt.Errorf("ensure sqlite directory: %w", err)
		}
		dialector = gormsqlite.Open(withSQLitePragmas(dsn))
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	logger.Info("database opened", "driver", driver)
	return &Store{db: db, logger: logger}, nil
}

// New wraps an existing connection.
func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&panchayatRow{},
		&readingRow{},
		&subscriptionRow{},
	); err != nil {
		return fmt.Errorf("auto migrate schema: %w", err)
	}
	return nil
}

// CheckReadiness pings the underlying connection.
func (s *Store) CheckReadiness(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

// sqlitePragmas let background seeding and request reads share one file.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// withSQLitePragmas appends the default pragmas unless the DSN sets its own.
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

func ensureSQLiteDirectory(dsn string) error {
	candidate := strings.TrimSpace(dsn)
	if candidate == "" || candidate == ":memory:" {
		return nil
	}
	candidate = strings.TrimPrefix(candidate, "file:")
	if idx := strings.Index(candidate, "?"); idx >= 0 {
		candidate = candidate[:idx]
	}

	dir := filepath.Dir(candidate)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create sqlite directory %q: %w", dir, err)
	}
	return nil
}
