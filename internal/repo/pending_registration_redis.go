package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xxxsen/otpauth/internal/model"
	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
)

const pendingKeyPrefix = "pending:"

// RedisPendingStore keeps pending registrations as JSON values. Keys outlive
// the OTP by the retention window so an expired attempt is still reported as
// expired instead of missing.
type RedisPendingStore struct {
	rdb       *redis.Client
	retention time.Duration
}

func NewRedisPendingStore(rdb *redis.Client, retention time.Duration) *RedisPendingStore {
	return &RedisPendingStore{rdb: rdb, retention: retention}
}

func (s *RedisPendingStore) Create(ctx context.Context, item *model.PendingRegistration) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, pendingKey(item.Email), payload, keyTTL(item, s.retention)).Result()
	if err != nil {
		return err
	}
	if !ok {
		return appErr.ErrConflict
	}
	return nil
}

func (s *RedisPendingStore) FindByEmail(ctx context.Context, email string) (*model.PendingRegistration, error) {
	data, err := s.rdb.Get(ctx, pendingKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	var item model.PendingRegistration
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *RedisPendingStore) DeleteByEmail(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, pendingKey(email)).Err()
}

func pendingKey(email string) string {
	return pendingKeyPrefix + email
}

func keyTTL(item *model.PendingRegistration, retention time.Duration) time.Duration {
	ttl := time.Duration(item.ExpiresAt-item.Ctime)*time.Second + retention
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}
