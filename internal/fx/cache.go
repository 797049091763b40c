package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Cache stores exchange rates in Redis with a TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a rate cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func rateKey(from, to string) string {
	return fmt.Sprintf("fx:rate:%s:%s", from, to)
}

// Get returns a cached rate. Any Redis failure reads as a miss.
func (c *Cache) Get(ctx context.Context, from, to string) (decimal.Decimal, bool) {
	raw, err := c.client.Get(ctx, rateKey(from, to)).Result()
	if err != nil {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return rate, true
}

// Set stores a rate for the configured TTL.
func (c *Cache) Set(ctx context.Context, from, to string, rate decimal.Decimal) error {
	return c.client.Set(ctx, rateKey(from, to), rate.String(), c.ttl).Err()
}
