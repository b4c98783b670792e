package termstore

import (
	"context"

	"gorm.io/gorm"
)

// ForbiddenTerm is one row of the forbidden-term table.
type ForbiddenTerm struct {
	ID   uint   `gorm:"primarykey"`
	Term string `gorm:"uniqueIndex;not null"`
}

type GormTermStore struct {
	DB *gorm.DB
}

func NewGormTermStore(db *gorm.DB) (*GormTermStore, error) {
	if err := db.AutoMigrate(&ForbiddenTerm{}); err != nil {
		return nil, err
	}
	return &GormTermStore{DB: db}, nil
}

func (s *GormTermStore) ListTerms(ctx context.Context) ([]string, error) {
	var terms []string
	if err := s.DB.WithContext(ctx).Model(&ForbiddenTerm{}).Pluck("term", &terms).Error; err != nil {
		return nil, err
	}
	return terms, nil
}

func (s *GormTermStore) AddTerm(ctx context.Context, term string) error {
	return s.DB.WithContext(ctx).Create(&ForbiddenTerm{Term: term}).Error
}
