package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchStatus tracks the operational state of a shipment batch. Only
// BatchStatusPending matters to the allocation logic; the rest are carried
// through for downstream tracking.
type BatchStatus string

const (
	BatchStatusPending      BatchStatus = "PENDING"
	BatchStatusInProduction BatchStatus = "IN_PRODUCTION"
	BatchStatusShipped      BatchStatus = "SHIPPED"
	BatchStatusDelivered    BatchStatus = "DELIVERED"
)

// DefaultLeadTime is the planned-ship-date offset applied to new batches.
const DefaultLeadTime = 30 * 24 * time.Hour

// ShipmentBatch is a sub-quantity of a line item scheduled to ship as a
// discrete unit.
type ShipmentBatch struct {
	ID               string      `json:"id"`
	BatchNumber      int         `json:"batch_number"`
	Quantity         int         `json:"quantity"`
	PlannedShipDate  *time.Time  `json:"planned_ship_date,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	Status           BatchStatus `json:"status"`
	TrackingNumber   string      `json:"tracking_number,omitempty"`
	ActualShipDate   *time.Time  `json:"actual_ship_date,omitempty"`
	EstimatedArrival *time.Time  `json:"estimated_arrival,omitempty"`
	CustomsInfo      string      `json:"customs_info,omitempty"`
}

// LineItem is one ordered product within a draft order, with its own price,
// currency and shipment plan. The batch quantities must sum to Quantity
// before the order can be assembled.
type LineItem struct {
	ID              string          `json:"id"`
	ProductKey      string          `json:"product_key"`
	PartNo          string          `json:"part_no"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Currency        string          `json:"currency"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	IsAssembly      bool            `json:"is_assembly"`
	Batches         []ShipmentBatch `json:"batches"`
}

// ProductKey builds the composite product identity used to prevent duplicate
// lines for the same product within one order.
func ProductKey(customerID int64, partNo string) string {
	return fmt.Sprintf("%d:%s", customerID, partNo)
}

// NewToken returns an opaque unique token for line items and batches.
func NewToken() string {
	return uuid.NewString()
}

// OrderNumberSource distinguishes system-generated from user-supplied order
// numbers.
type OrderNumberSource string

const (
	OrderNumberGenerated OrderNumberSource = "GENERATED"
	OrderNumberCustom    OrderNumberSource = "CUSTOM"
)

// OrderNumber carries the draft's identifier together with how it was
// obtained and whether it can be trusted at assembly time.
type OrderNumber struct {
	Value  string            `json:"value"`
	Source OrderNumberSource `json:"source"`
	// Verified is true for custom numbers whose uniqueness has been
	// confirmed against the registry.
	Verified bool `json:"verified"`
	// Failed marks a system generation that did not complete. An order
	// cannot be assembled while in this sentinel state.
	Failed bool `json:"failed"`
}

// OrderRecord is the persisted parent row produced by assembly.
type OrderRecord struct {
	OrderNo       string          `json:"order_no"`
	CustomerID    int64           `json:"customer_id"`
	PONumber      string          `json:"po_number"`
	PaymentTerms  string          `json:"payment_terms,omitempty"`
	DeliveryTerms string          `json:"delivery_terms,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	BatchIDs      []string        `json:"batch_ids"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BatchRecord is one flattened row per (line item, batch) pair, carrying the
// parent line's commercial fields alongside the batch's operational fields.
type BatchRecord struct {
	BatchID          string          `json:"batch_id"`
	OrderNo          string          `json:"order_no"`
	PartNo           string          `json:"part_no"`
	Description      string          `json:"description"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Currency         string          `json:"currency"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	TaxPercent       decimal.Decimal `json:"tax_percent"`
	LineTotal        decimal.Decimal `json:"line_total"`
	PlannedShipDate  *time.Time      `json:"planned_ship_date,omitempty"`
	Status           BatchStatus     `json:"status"`
	Notes            string          `json:"notes,omitempty"`
	TrackingNumber   string          `json:"tracking_number,omitempty"`
	ActualShipDate   *time.Time      `json:"actual_ship_date,omitempty"`
	EstimatedArrival *time.Time      `json:"estimated_arrival,omitempty"`
	CustomsInfo      string          `json:"customs_info,omitempty"`
}
