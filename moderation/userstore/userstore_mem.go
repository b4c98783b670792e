package userstore

import (
	"context"
	"sync"
)

type MemUserStore struct {
	lk   sync.RWMutex
	data map[string]UserRecord
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{
		data: make(map[string]UserRecord),
	}
}

func (s *MemUserStore) GetUser(ctx context.Context, userID string) (*UserRecord, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()
	rec, ok := s.data[userID]
	if !ok {
		return nil, nil
	}
	// copy, so callers can't mutate shared state behind the lock
	return &rec, nil
}

func (s *MemUserStore) PutUser(ctx context.Context, rec *UserRecord) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.data[rec.UserID] = *rec
	return nil
}
