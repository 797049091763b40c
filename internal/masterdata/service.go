package masterdata

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/forgeline-erp/forgeline-erp/internal/shared"
)

// Service provides read access to master data for the order form.
type Service struct {
	repo Repository
}

// NewService creates a master data service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LoadReferenceData fetches customers and products concurrently for the
// order form's initial load. A failure of either fetch fails the whole load;
// the caller retries by re-invoking.
func (s *Service) LoadReferenceData(ctx context.Context) (*ReferenceData, error) {
	var data ReferenceData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		customers, err := s.repo.ListCustomers(ctx)
		if err != nil {
			return &shared.ReferenceDataError{Op: "list customers", Err: err}
		}
		data.Customers = customers
		return nil
	})
	g.Go(func() error {
		products, err := s.repo.ListProducts(ctx)
		if err != nil {
			return &shared.ReferenceDataError{Op: "list products", Err: err}
		}
		data.Products = products
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetCustomer retrieves one customer.
func (s *Service) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// ProductsByCustomerAndPartNos resolves the products referenced by new line
// items.
func (s *Service) ProductsByCustomerAndPartNos(ctx context.Context, customerID int64, partNos []string) ([]Product, error) {
	if len(partNos) == 0 {
		return nil, nil
	}
	products, err := s.repo.ProductsByCustomerAndPartNos(ctx, customerID, partNos)
	if err != nil {
		return nil, &shared.ReferenceDataError{Op: "resolve products", Err: err}
	}
	return products, nil
}
