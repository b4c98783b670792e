package userstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormUserStore struct {
	DB *gorm.DB
}

func NewGormUserStore(db *gorm.DB) (*GormUserStore, error) {
	if err := db.AutoMigrate(&UserRecord{}); err != nil {
		return nil, err
	}
	return &GormUserStore{DB: db}, nil
}

func (s *GormUserStore) GetUser(ctx context.Context, userID string) (*UserRecord, error) {
	var rec UserRecord
	err := s.DB.WithContext(ctx).First(&rec, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormUserStore) PutUser(ctx context.Context, rec *UserRecord) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(rec).Error
}
