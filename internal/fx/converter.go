// Package fx converts monetary amounts between currencies using a rate table
// in PostgreSQL fronted by a Redis cache.
package fx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ErrRateNotFound indicates no direct or inverse rate exists for a pair.
var ErrRateNotFound = errors.New("fx: rate not found")

// RateSource supplies an exchange rate for a currency pair.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Converter converts amounts between currency codes. Identity conversions
// never touch the rate source, so same-currency amounts are returned without
// any rounding through a rate.
type Converter struct {
	source RateSource
	cache  *Cache
	logger *slog.Logger
}

// NewConverter constructs a converter. The cache is optional.
func NewConverter(source RateSource, cache *Cache, logger *slog.Logger) *Converter {
	return &Converter{source: source, cache: cache, logger: logger}
}

// Convert returns amount expressed in the target currency.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	if _, err := currency.ParseISO(from); err != nil {
		return decimal.Zero, fmt.Errorf("fx: invalid currency %q: %w", from, err)
	}
	if _, err := currency.ParseISO(to); err != nil {
		return decimal.Zero, fmt.Errorf("fx: invalid currency %q: %w", to, err)
	}

	if c.cache != nil {
		if rate, ok := c.cache.Get(ctx, from, to); ok {
			return amount.Mul(rate), nil
		}
	}

	rate, err := c.source.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, from, to, rate); err != nil && c.logger != nil {
			c.logger.Warn("cache fx rate", slog.Any("error", err))
		}
	}
	return amount.Mul(rate), nil
}
