package store

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/fulfillment"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix = "fulfillment:session:"
	lockKeyPrefix    = "lock:fulfillment:"
	lockTTL          = 10 * time.Second
	lockRetryDelay   = 50 * time.Millisecond
)

var ErrLockTimeout = errors.New("timed out waiting for fulfillment lock")

// RedisStore shares sessions between service instances. Sessions expire
// after ttl without activity.
type RedisStore struct {
	redis  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewRedisStore(redis *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *RedisStore {
	return &RedisStore{redis: redis, ttl: ttl, logger: log}
}

func (r *RedisStore) Get(ctx context.Context, requestID string) (*fulfillment.Session, error) {
	var s fulfillment.Session
	found, err := r.redis.GetJSON(ctx, sessionKeyPrefix+requestID, &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *fulfillment.Session) error {
	return r.redis.SetJSON(ctx, sessionKeyPrefix+s.RequestID, s, r.ttl)
}

func (r *RedisStore) Delete(ctx context.Context, requestID string) error {
	return r.redis.Delete(ctx, sessionKeyPrefix+requestID)
}

// Lock spins on SETNX until the lock is acquired, ctx is done, or lockTTL
// passes.
func (r *RedisStore) Lock(ctx context.Context, requestID string) (func(), error) {
	key := lockKeyPrefix + requestID
	token := uuid.New().String()
	deadline := time.Now().Add(lockTTL)

	for {
		ok, err := r.redis.AcquireLock(ctx, key, token, lockTTL)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return func() {
		if err := r.redis.ReleaseLock(context.Background(), key, token); err != nil {
			r.logger.Warn("failed to release fulfillment lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
