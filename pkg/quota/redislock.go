package quota

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock key only if it still holds our token, so a
// lock that expired and was re-acquired by another instance is never
// released by the original holder.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a cross-instance Serializer built on SET NX PX. The TTL bounds
// how long a crashed holder can block other instances; fn must finish well
// within it.
type RedisLock struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLock returns a RedisLock with the given lock TTL. Non-positive TTL
// defaults to 10s, retry interval is TTL/20 bounded to [10ms, 250ms].
func NewRedisLock(client redis.UniversalClient, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	retry := ttl / 20
	if retry < 10*time.Millisecond {
		retry = 10 * time.Millisecond
	}
	if retry > 250*time.Millisecond {
		retry = 250 * time.Millisecond
	}
	return &RedisLock{client: client, ttl: ttl, retry: retry}
}

func (r *RedisLock) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return errors.Join(ErrLockNotAcquired, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(ErrLockNotAcquired, ctx.Err())
		case <-time.After(r.retry):
		}
	}

	defer func() {
		// Unlock on a fresh context: the caller's context may already be done.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(releaseCtx, r.client, []string{key}, token).Err()
	}()

	return fn(ctx)
}
