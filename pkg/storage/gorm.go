package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is the table row holding one stored value.
type Entry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name regardless of naming strategy.
func (Entry) TableName() string { return "form_drafts" }

// Gorm stores values in a SQL table through gorm.
type Gorm struct {
	db *gorm.DB
}

var _ KV = (*Gorm)(nil)

// OpenPostgres connects to dsn and migrates the drafts table.
func OpenPostgres(dsn string) (*Gorm, error) {
	if dsn == "" {
		return nil, fmt.Errorf("storage: postgres dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return NewGorm(db)
}

// NewGorm wraps an existing connection and migrates the drafts table.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if db == nil {
		return nil, fmt.Errorf("storage: db is nil")
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate drafts table: %w", err)
	}
	log.Printf("[storage.NewGorm] drafts table ready")
	return &Gorm{db: db}, nil
}

// Get returns the stored value or ErrNotFound.
func (g *Gorm) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	err := g.db.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key '%s': %w", key, err)
	}
	return entry.Value, nil
}

// Set upserts value under key.
func (g *Gorm) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key '%s': %w", key, err)
	}
	return nil
}

// Delete removes key.
func (g *Gorm) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete key '%s': %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
