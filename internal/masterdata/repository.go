package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgeline-erp/forgeline-erp/internal/shared"
)

// Repository exposes read-only access to the customer and product masters.
type Repository interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ProductsByCustomerAndPartNos(ctx context.Context, customerID int64, partNos []string) ([]Product, error)
}

// repo implements Repository on PostgreSQL.
type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new master data repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

func (r *repo) ListCustomers(ctx context.Context) ([]Customer, error) {
	query := `SELECT id, code, name, currency, payment_terms, delivery_terms, country, is_active, created_at, updated_at
	          FROM customers WHERE is_active ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Currency, &c.PaymentTerms, &c.DeliveryTerms, &c.Country, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *repo) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	query := `SELECT id, code, name, currency, payment_terms, delivery_terms, country, is_active, created_at, updated_at
	          FROM customers WHERE id = $1`
	var c Customer
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Code, &c.Name, &c.Currency, &c.PaymentTerms, &c.DeliveryTerms, &c.Country, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repo) ListProducts(ctx context.Context) ([]Product, error) {
	query := `SELECT id, customer_id, part_no, name, unit_price, currency, is_assembly, is_active, created_at, updated_at
	          FROM products WHERE is_active ORDER BY part_no`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *repo) ProductsByCustomerAndPartNos(ctx context.Context, customerID int64, partNos []string) ([]Product, error) {
	query := `SELECT id, customer_id, part_no, name, unit_price, currency, is_assembly, is_active, created_at, updated_at
	          FROM products WHERE customer_id = $1 AND part_no = ANY($2)`
	rows, err := r.db.Query(ctx, query, customerID, partNos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.PartNo, &p.Name, &p.UnitPrice, &p.Currency, &p.IsAssembly, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
