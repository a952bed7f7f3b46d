// Package sqlite persists client state in a local SQLite file so that a session
// survives across process restarts.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/cyberrisk/internal/domain/repository"
)

var _ repository.KeyValueStore = (*KVStore)(nil)

// KVEntry is one row of the kv_entries table.
type KVEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (KVEntry) TableName() string {
	return "kv_entries"
}

// KVStore is a gorm-backed KeyValueStore.
type KVStore struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at dsn and migrates the schema.
// Use "file::memory:?cache=shared" for an ephemeral database.
func Open(dsn string) (*KVStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	return NewKVStore(db)
}

// NewKVStore wraps an existing gorm handle.
func NewKVStore(db *gorm.DB) (*KVStore, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &KVStore{db: db}, nil
}

// Get returns the value stored at key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set stores a single value.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany upserts every entry in one transaction.
func (s *KVStore) SetMany(ctx context.Context, entries map[string]string) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range entries {
			row := KVEntry{Key: k, Value: v, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "entry_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to write key %q: %w", k, err)
			}
		}
		return nil
	})
}

// Remove deletes keys in one statement.
func (s *KVStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("entry_key IN ?", keys).Delete(&KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to remove keys: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *KVStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
