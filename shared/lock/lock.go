package lock

//go:generate go run go.uber.org/mock/mockgen -source=./lock.go -destination=./mocks/lock_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"suitesync/config"
	"suitesync/infras/otel"
	"suitesync/shared/constant"
)

const (
	acquireWait = 50 * time.Millisecond
)

// Locker is a short-lived advisory lock keyed by resource. The allocator and
// the auditor both take the same key before mutating a reservation's resource
// assignment, so per-resource check-then-assign is serialized across processes.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type redisLocker struct {
	client      *redis.Client
	otel        otel.Otel
	maxAttempts int
}

func New(client *redis.Client, otl otel.Otel, cfg *config.Config) Locker {
	return &redisLocker{
		client:      client,
		otel:        otl,
		maxAttempts: max(cfg.Sync.LockMaxAttempts, 1),
	}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (err error) {
	ctx, scope := l.otel.NewScope(ctx, constant.OtelLockScopeName, constant.OtelLockScopeName+".Acquire")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute("lock.key", key)

	for attempt := range l.maxAttempts {
		acquired, err := l.client.SetNX(ctx, key, constant.SyncActorName, ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}

		if acquired {
			return nil
		}

		log.Debug().Str("key", key).Int("attempt", attempt+1).Msg("lock held elsewhere, waiting")
		time.Sleep(acquireWait)
	}

	return fmt.Errorf("lock %s still held after %d attempts", key, l.maxAttempts)
}

func (l *redisLocker) Release(ctx context.Context, key string) (err error) {
	ctx, scope := l.otel.NewScope(ctx, constant.OtelLockScopeName, constant.OtelLockScopeName+".Release")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}

	return nil
}

// ResourceKey builds the lock key guarding a single resource of a tenant.
func ResourceKey(tenantID, resourceID string) string {
	return fmt.Sprintf("lock:resource:%s:%s", tenantID, resourceID)
}
