package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvEntry は kv_entries テーブルの1行。
type kvEntry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// GormKVStore は postgres に保存する（複数端末で同じカートを使うとき）。
type GormKVStore struct {
	db *gorm.DB
}

// DI
func NewGormKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{db: db}
}

// Migrate はテーブルを作る。
func (s *GormKVStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&kvEntry{})
}

func (s *GormKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(e.Value), true, nil
}

// upsert
func (s *GormKVStore) Set(ctx context.Context, key string, value []byte) error {
	e := kvEntry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
}

func (s *GormKVStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&kvEntry{}).Error
}
