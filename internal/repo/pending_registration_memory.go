package repo

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xxxsen/otpauth/internal/model"
	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
)

// MemoryPendingStore is a process local store for single instance deployments.
// Entries are evicted ttl after insertion, or earlier once size is exceeded.
type MemoryPendingStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, model.PendingRegistration]
}

func NewMemoryPendingStore(size int, ttl time.Duration) *MemoryPendingStore {
	return &MemoryPendingStore{
		cache: expirable.NewLRU[string, model.PendingRegistration](size, nil, ttl),
	}
}

func (s *MemoryPendingStore) Create(_ context.Context, item *model.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache.Contains(item.Email) {
		return appErr.ErrConflict
	}
	s.cache.Add(item.Email, *item)
	return nil
}

func (s *MemoryPendingStore) FindByEmail(_ context.Context, email string) (*model.PendingRegistration, error) {
	item, ok := s.cache.Get(email)
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &item, nil
}

func (s *MemoryPendingStore) DeleteByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(email)
	return nil
}
