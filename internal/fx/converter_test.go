package fx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateSource struct {
	calls int
	rate  decimal.Decimal
	err   error
}

func (s *stubRateSource) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.rate, nil
}

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConvert_IdentitySkipsSource(t *testing.T) {
	source := &stubRateSource{err: errors.New("must not be called")}
	conv := NewConverter(source, nil, testLogger())

	amount := decimal.RequireFromString("123.45")
	got, err := conv.Convert(context.Background(), amount, "USD", "USD")
	require.NoError(t, err)

	assert.True(t, got.Equal(amount))
	assert.Equal(t, 0, source.calls)
}

func TestConvert_InvalidCurrency(t *testing.T) {
	conv := NewConverter(&stubRateSource{}, nil, testLogger())

	_, err := conv.Convert(context.Background(), decimal.NewFromInt(1), "NOPE", "USD")
	assert.Error(t, err)

	_, err = conv.Convert(context.Background(), decimal.NewFromInt(1), "USD", "??")
	assert.Error(t, err)
}

func TestConvert_UsesSourceAndCaches(t *testing.T) {
	source := &stubRateSource{rate: decimal.RequireFromString("1.25")}
	cache := testCache(t)
	conv := NewConverter(source, cache, testLogger())
	ctx := context.Background()

	got, err := conv.Convert(ctx, decimal.NewFromInt(100), "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(125)), "got %s", got)
	assert.Equal(t, 1, source.calls)

	// Second conversion hits the cache.
	got, err = conv.Convert(ctx, decimal.NewFromInt(8), "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, source.calls)
}

func TestConvert_SourceError(t *testing.T) {
	source := &stubRateSource{err: ErrRateNotFound}
	conv := NewConverter(source, nil, testLogger())

	_, err := conv.Convert(context.Background(), decimal.NewFromInt(1), "EUR", "USD")
	assert.ErrorIs(t, err, ErrRateNotFound)
}

func TestConvert_CacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	source := &stubRateSource{rate: decimal.NewFromInt(2)}
	conv := NewConverter(source, cache, testLogger())
	ctx := context.Background()

	_, err := conv.Convert(ctx, decimal.NewFromInt(1), "EUR", "USD")
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)

	mr.FastForward(2 * time.Minute)

	_, err = conv.Convert(ctx, decimal.NewFromInt(1), "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "expired cache entry must fall back to the source")
}

func TestCache_MissOnGarbage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	require.NoError(t, mr.Set("fx:rate:EUR:USD", "not-a-number"))

	_, ok := cache.Get(context.Background(), "EUR", "USD")
	assert.False(t, ok)
}
