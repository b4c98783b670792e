package userstore

import (
	"context"
	"time"
)

// UserRecord is the persisted per-participant moderation state.
type UserRecord struct {
	UserID            string     `gorm:"primaryKey;column:user_id" json:"user_id"`
	Rating            int        `json:"rating"`
	ViolationCount    int        `json:"violation_count"`
	LastViolationText string     `json:"last_violation_text,omitempty"`
	LastViolationAt   *time.Time `json:"last_violation_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// UserStore is the persistence contract backing the rating ledger. GetUser
// returns nil (not an error) when no record exists. Implementations only need
// plain get/put semantics; the ledger layers per-user serialization on top.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*UserRecord, error)
	PutUser(ctx context.Context, rec *UserRecord) error
}
