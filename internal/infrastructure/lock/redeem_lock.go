package lock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"loyalty/pkg/idgen"

	"github.com/go-redis/redis/v8"
)

// Redis lock serializing redemption requests. The guarded updates in
// the repositories already enforce correctness; the lock keeps losing
// requests from burning a database transaction to find that out.

var ErrLockFailed = errors.New("failed to acquire lock")

const (
	lockExpiration = 30 * time.Second
	retryInterval  = 100 * time.Millisecond
	maxRetries     = 30
)

// Lua unlock: delete only if we still hold the lock, atomically.
const unlockScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

// Acquire blocks until the lock for key is held or retries run out.
// The returned release function is safe to call after lock expiry: the
// unlock script only deletes a lock we still own.
func (m *Manager) Acquire(ctx context.Context, key string) (func(), error) {
	value := strconv.FormatInt(idgen.NextID(), 10)

	for i := 0; i < maxRetries; i++ {
		ok, err := m.client.SetNX(ctx, key, value, lockExpiration).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			release := func() {
				_, _ = m.client.Eval(context.Background(), unlockScript, []string{key}, value).Result()
			}
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, ErrLockFailed
}

// UserKey scopes a lock to one user's balance.
func UserKey(userID int64) string {
	return fmt.Sprintf("loyalty:lock:user:%d", userID)
}

// SerialKey scopes a lock to one redemption serial.
func SerialKey(serial string) string {
	return "loyalty:lock:serial:" + serial
}
