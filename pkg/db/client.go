package db

import (
	"context"
	"fmt"

	"github.com/kesarlabs/milltrack-backend/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client wraps the sqlite-backed gorm handle shared by every repository.
type Client struct {
	gorm *gorm.DB
}

// NewClient opens the local database file and applies the pragmas the
// tracker depends on. Foreign keys are enforced and concurrent readers
// wait for writers up to the configured busy timeout.
func NewClient(cfg config.DBConfig) (*Client, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("getting raw connection: %w", err)
	}
	// sqlite allows one writer at a time; a single connection keeps
	// transactions from tripping over SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	return &Client{gorm: gormDB}, nil
}

// NewClientWithGorm wraps an existing gorm handle. Tests use this to
// run against an in-memory database.
func NewClientWithGorm(gormDB *gorm.DB) *Client {
	return &Client{gorm: gormDB}
}

// Gorm exposes the underlying gorm handle.
func (c *Client) Gorm() *gorm.DB {
	return c.gorm
}

// Close releases the database file.
func (c *Client) Close() error {
	sqlDB, err := c.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn inside a transaction, rolling back on error or panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.gorm.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("rolling back after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
