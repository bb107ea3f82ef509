package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const keyPrefix = "energy-vault:balance:"

// Each balance is a hash {version, balance}. Both scripts compare against the
// stored version first; an invalidation keeps the version and drops the balance.
var (
	setBalanceScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], 'version') or '-1')
if current >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'balance', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

	invalidateBalanceScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], 'version') or '-1')
if current < tonumber(ARGV[1]) then
	redis.call('HSET', KEYS[1], 'version', ARGV[1])
end
redis.call('HDEL', KEYS[1], 'balance')
if tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)
)

// RedisCache stores versioned balances with a TTL.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, username, password string, db int, ttl time.Duration) (*RedisCache, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Username:    username,
		Password:    password,
		DB:          db,
		MaxRetries:  5,
		DialTimeout: 10 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisCache(client, ttl), client, nil
}

// Make sure we conform to the interface
var _ BalanceCache = (*RedisCache)(nil)

func balanceKey(customerID string) string {
	return keyPrefix + customerID
}

// GetBalance reads a cached balance.
func (c *RedisCache) GetBalance(ctx context.Context, customerID string) (decimal.Decimal, bool, error) {
	val, err := c.client.HGet(ctx, balanceKey(customerID), "balance").Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get cached balance: %w", err)
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to parse cached balance %q: %w", val, err)
	}
	return balance, true, nil
}

// SetBalance writes a balance unless the cache already holds one at least as new.
func (c *RedisCache) SetBalance(ctx context.Context, customerID string, balance decimal.Decimal, version int64) error {
	err := setBalanceScript.Run(ctx, c.client, []string{balanceKey(customerID)},
		version, balance.String(), c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to set cached balance: %w", err)
	}
	return nil
}

// InvalidateBalance removes a cached balance while remembering version.
func (c *RedisCache) InvalidateBalance(ctx context.Context, customerID string, version int64) error {
	err := invalidateBalanceScript.Run(ctx, c.client, []string{balanceKey(customerID)},
		version, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate cached balance: %w", err)
	}
	return nil
}
