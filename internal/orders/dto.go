package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type StartDraftRequest struct {
	CustomerID int64  `json:"customer_id" validate:"required,gt=0"`
	Currency   string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type UpdateDraftRequest struct {
	PONumber      *string `json:"po_number,omitempty" validate:"omitempty,max=100"`
	PaymentTerms  *string `json:"payment_terms,omitempty" validate:"omitempty,max=200"`
	DeliveryTerms *string `json:"delivery_terms,omitempty" validate:"omitempty,max=200"`
	Remarks       *string `json:"remarks,omitempty"`
}

type AddLineItemsRequest struct {
	Items []NewLineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type NewLineItemRequest struct {
	PartNo   string `json:"part_no" validate:"required,max=100"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateLineItemRequest struct {
	Quantity        *int     `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	UnitPrice       *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	Currency        *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	DiscountPercent *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	TaxPercent      *float64 `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type UpdateBatchRequest struct {
	Quantity         *int         `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	PlannedShipDate  *time.Time   `json:"planned_ship_date,omitempty"`
	Notes            *string      `json:"notes,omitempty"`
	Status           *BatchStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PRODUCTION SHIPPED DELIVERED"`
	TrackingNumber   *string      `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
	ActualShipDate   *time.Time   `json:"actual_ship_date,omitempty"`
	EstimatedArrival *time.Time   `json:"estimated_arrival,omitempty"`
	CustomsInfo      *string      `json:"customs_info,omitempty"`
}

type CustomOrderNumberRequest struct {
	OrderNo string `json:"order_no" validate:"required,max=40"`
}

// LineTotal reports the priced and allocation state of one line item.
type LineTotal struct {
	ItemID         string          `json:"item_id"`
	PartNo         string          `json:"part_no"`
	Total          decimal.Decimal `json:"total"`
	Allocated      int             `json:"allocated"`
	Remaining      int             `json:"remaining"`
	FullyAllocated bool            `json:"fully_allocated"`
}

// DraftTotals is the order-level monetary summary in the settlement currency.
type DraftTotals struct {
	Currency   string          `json:"currency"`
	Lines      []LineTotal     `json:"lines"`
	OrderTotal decimal.Decimal `json:"order_total"`
}
