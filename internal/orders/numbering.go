package orders

import (
	"context"
	"time"
)

// NumberIssuer wraps the order-number services: generation of the next
// sequential number and registry lookups for user-supplied ones.
type NumberIssuer struct {
	repo   Repository
	prefix string
	now    func() time.Time
}

// NewNumberIssuer constructs an issuer with the configured number prefix.
func NewNumberIssuer(repo Repository, prefix string) *NumberIssuer {
	return &NumberIssuer{repo: repo, prefix: prefix, now: time.Now}
}

// Generate issues the next order number.
func (n *NumberIssuer) Generate(ctx context.Context) (string, error) {
	return n.repo.GenerateOrderNumber(ctx, n.prefix, n.now())
}

// IsTaken reports whether a candidate number is already in use.
func (n *NumberIssuer) IsTaken(ctx context.Context, orderNo string) (bool, error) {
	return n.repo.IsOrderNumberTaken(ctx, orderNo)
}
