package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the key only if it still holds our token, so a
// lock that expired and was re-taken by someone else is left alone.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Redis is a Locker shared by every replica.  Locks expire after ttl so
// a crashed holder cannot wedge an item.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{rdb: rdb, ttl: ttl, log: log.With().Str("component", "lock").Logger()}
}

func (r *Redis) TryAcquire(ctx context.Context, key string) (Release, error) {
	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return func() {
		// the caller's context may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.rdb, []string{key}, token).Err(); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("release failed")
		}
	}, nil
}

func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	backoff := 10 * time.Millisecond
	for {
		rel, err := r.TryAcquire(ctx, key)
		if !errors.Is(err, ErrNotAcquired) {
			return rel, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}
