// Package redislock implements drip.Locker on Redis so visits of one queue
// are serialised across processes.
package redislock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockLost is returned by unlock when the key expired or was taken over.
var ErrLockLost = errors.New("redislock: lock expired before release")

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Client is the subset of go-redis used by Locker.
type Client interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// Locker acquires keys with SET NX PX and releases them with a token check.
type Locker struct {
	client Client
	token  func() string
}

// New creates a Locker.
func New(client Client) *Locker {
	return &Locker{client: client, token: uuid.NewString}
}

// TryLock sets key to a random token for ttl unless it already exists.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := l.token()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLockLost
		}
		return nil
	}, true, nil
}
