package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

func OpenRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return r, nil
}

// WindowCounter counts hits per key in fixed windows. The first hit in a
// window sets the key's expiry, so counters clean themselves up.
type WindowCounter struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

func NewWindowCounter(rdb *redis.Client, prefix string, window time.Duration) *WindowCounter {
	return &WindowCounter{rdb: rdb, prefix: prefix, window: window}
}

func (w *WindowCounter) key(id string, now time.Time) string {
	slot := now.UnixNano() / int64(w.window)
	return fmt.Sprintf("%s:%s:%d", w.prefix, id, slot)
}

// Hit records one hit for id and returns the count in the current window
// together with the time left before the window resets.
func (w *WindowCounter) Hit(ctx context.Context, id string, now time.Time) (int64, time.Duration, error) {
	k := w.key(id, now)
	n, err := w.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := w.rdb.Expire(ctx, k, w.window).Err(); err != nil {
			return 0, 0, err
		}
	}
	elapsed := time.Duration(now.UnixNano() % int64(w.window))
	return n, w.window - elapsed, nil
}
