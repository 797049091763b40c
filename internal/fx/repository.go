package fx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads exchange rates from the fx_rates table. When no direct
// rate exists the inverse pair is tried and reciprocated.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a rate repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const inverseScale = 12

// Rate returns the most recent rate for the pair.
func (r *Repository) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	const query = `SELECT rate FROM fx_rates WHERE base = $1 AND quote = $2 ORDER BY valid_from DESC LIMIT 1`

	var rate decimal.Decimal
	err := r.pool.QueryRow(ctx, query, from, to).Scan(&rate)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("fx: query rate %s/%s: %w", from, to, err)
	}

	err = r.pool.QueryRow(ctx, query, to, from).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrRateNotFound, from, to)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx: query rate %s/%s: %w", to, from, err)
	}
	if rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s/%s inverse rate is zero", ErrRateNotFound, from, to)
	}
	return decimal.NewFromInt(1).DivRound(rate, inverseScale), nil
}
