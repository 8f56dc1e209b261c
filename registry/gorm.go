package registry

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore is a sqlite-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens (or creates) the sqlite database at path and migrates
// the schema.
func NewGormStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	if err := db.AutoMigrate(&Tourist{}, &Location{}); err != nil {
		return nil, fmt.Errorf("failed to migrate registry schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) PutTourist(ctx context.Context, t Tourist) error {
	if err := s.db.WithContext(ctx).Save(&t).Error; err != nil {
		return fmt.Errorf("failed to store tourist record: %w", err)
	}
	return nil
}

func (s *GormStore) GetTourist(ctx context.Context, did string) (*Tourist, error) {
	var t Tourist
	err := s.db.WithContext(ctx).First(&t, "did = ?", did).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tourist record: %w", err)
	}
	return &t, nil
}

func (s *GormStore) PutLocation(ctx context.Context, l Location) error {
	if err := s.db.WithContext(ctx).Save(&l).Error; err != nil {
		return fmt.Errorf("failed to store location record: %w", err)
	}
	return nil
}

func (s *GormStore) GetLocation(ctx context.Context, did string) (*Location, error) {
	var l Location
	err := s.db.WithContext(ctx).First(&l, "did = ?", did).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load location record: %w", err)
	}
	return &l, nil
}
