package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the kv_entries table
type KVEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string `gorm:"column:entry_value;type:longtext"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string { return "kv_entries" }

type sqlKV struct {
	db *gorm.DB
}

// NewSQLKV migrates the kv_entries table and returns a store over it
func NewSQLKV(db *gorm.DB) (KVStore, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, err
	}
	return &sqlKV{db: db}, nil
}

func (r *sqlKV) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := r.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (r *sqlKV) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
}
