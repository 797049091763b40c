package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is read-only reference data from the customer master.
type Customer struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Currency      string    `json:"currency"`
	PaymentTerms  string    `json:"payment_terms,omitempty"`
	DeliveryTerms string    `json:"delivery_terms,omitempty"`
	Country       string    `json:"country"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Product is read-only reference data from the product master. Immutable
// from the order core's point of view; unit price and currency are only the
// defaults a line item starts from.
type Product struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	PartNo     string          `json:"part_no"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Currency   string          `json:"currency"`
	IsAssembly bool            `json:"is_assembly"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ReferenceData is the combined initial load for the order form.
type ReferenceData struct {
	Customers []Customer `json:"customers"`
	Products  []Product  `json:"products"`
}
