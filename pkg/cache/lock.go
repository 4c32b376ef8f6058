package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the key.
var ErrLockHeld = errors.New("lock already held")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a held lock. Release is idempotent.
type Lease struct {
	key     string
	token   string
	release func(context.Context) error
	once    sync.Once
	err     error
}

// Key returns the locked key.
func (l *Lease) Key() string { return l.key }

// Release frees the lock if this lease still owns it.
func (l *Lease) Release(ctx context.Context) error {
	l.once.Do(func() {
		l.err = l.release(ctx)
	})
	return l.err
}

// Locker hands out exclusive leases keyed by name. With a Redis client the
// lease is visible to every replica; without one it only guards this process.
type Locker struct {
	client *redis.Client
	prefix string

	mu    sync.Mutex
	local map[string]localLease
}

type localLease struct {
	token   string
	expires time.Time
}

// NewLocker builds a Locker. client may be nil.
func NewLocker(client *redis.Client, prefix string) *Locker {
	if prefix == "" {
		prefix = "lock"
	}
	return &Locker{client: client, prefix: prefix, local: make(map[string]localLease)}
}

// Acquire takes the lock for name or returns ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	key := fmt.Sprintf("%s:%s", l.prefix, name)
	token := uuid.NewString()

	if l.client == nil {
		return l.acquireLocal(key, token, ttl)
	}

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return &Lease{key: key, token: token, release: func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}}, nil
}

func (l *Locker) acquireLocal(key, token string, ttl time.Duration) (*Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if held, ok := l.local[key]; ok && now.Before(held.expires) {
		return nil, ErrLockHeld
	}
	l.local[key] = localLease{token: token, expires: now.Add(ttl)}

	return &Lease{key: key, token: token, release: func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if held, ok := l.local[key]; ok && held.token == token {
			delete(l.local, key)
		}
		return nil
	}}, nil
}
