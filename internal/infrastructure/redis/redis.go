package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	Client *redis.Client
}

func New(addr, pass string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &Cache{Client: rdb}
}

func recKey(userID uuid.UUID) string  { return "rec:user:" + userID.String() }
func lockKey(userID uuid.UUID) string { return "rec:lock:" + userID.String() }

// InvalidateUser drops the web tier's cached recommendation set so the next
// read goes to the store.
func (c *Cache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	return c.Client.Del(ctx, recKey(userID)).Err()
}

// AcquireRunLock takes the per-user single-writer lock. It returns false
// when another run holds the lock; the TTL guards against abandoned locks.
func (c *Cache) AcquireRunLock(ctx context.Context, userID uuid.UUID, ttl time.Duration) (bool, error) {
	return c.Client.SetNX(ctx, lockKey(userID), 1, ttl).Result()
}

func (c *Cache) ReleaseRunLock(ctx context.Context, userID uuid.UUID) error {
	return c.Client.Del(ctx, lockKey(userID)).Err()
}
