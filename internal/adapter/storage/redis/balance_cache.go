package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const balanceKey = "funds:balance"

// BalanceCache implements ports.BalanceCache using Redis. It fronts the
// fund ledger for the remaining-funds projection; every ledger write
// invalidates it.
type BalanceCache struct {
	client *goredis.Client
}

// NewBalanceCache creates a new Redis-backed balance cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{client: client}
}

// Get retrieves the cached balance. Returns nil, nil on a miss.
func (c *BalanceCache) Get(ctx context.Context) ([]byte, error) {
	val, err := c.client.Get(ctx, balanceKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis balance get: %w", err)
	}
	return val, nil
}

// Set stores the balance with a TTL.
func (c *BalanceCache) Set(ctx context.Context, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, balanceKey, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}

// Invalidate drops the cached balance after a ledger write.
func (c *BalanceCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, balanceKey).Err(); err != nil {
		return fmt.Errorf("redis balance del: %w", err)
	}
	return nil
}
