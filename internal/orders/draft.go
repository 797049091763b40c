package orders

import (
	"errors"
	"time"
)

// DraftStatus is the lifecycle state of an in-memory draft order.
//
//	Editing -> Validating -> Rejected(reason) -> Editing
//	                      -> Assembled -> Persisted
//
// Validating and Rejected are transient within an Assemble call; a rejected
// draft returns to Editing carrying the rejection reason. Assembled and
// Persisted are terminal: a new draft must be started to place another order.
type DraftStatus string

const (
	DraftStatusEditing   DraftStatus = "EDITING"
	DraftStatusAssembled DraftStatus = "ASSEMBLED"
	DraftStatusPersisted DraftStatus = "PERSISTED"
)

// ErrDraftFinal is returned when mutating a draft that already assembled.
var ErrDraftFinal = errors.New("draft order is already assembled")

// Draft is the in-memory aggregate of customer, terms and line items being
// edited. There is exactly one writer (the interactive user); the draft
// itself carries no locking.
type Draft struct {
	ID            string      `json:"id"`
	CustomerID    int64       `json:"customer_id"`
	PONumber      string      `json:"po_number"`
	PaymentTerms  string      `json:"payment_terms,omitempty"`
	DeliveryTerms string      `json:"delivery_terms,omitempty"`
	Remarks       string      `json:"remarks,omitempty"`
	Currency      string      `json:"currency"`
	Number        OrderNumber `json:"number"`
	Items         []LineItem  `json:"items"`
	Status        DraftStatus `json:"status"`
	LastRejection string      `json:"last_rejection,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`

	// Generation advances on every mutation. In-flight async results
	// (number generation, uniqueness checks) captured against an older
	// generation are discarded instead of overwriting newer state.
	Generation uint64 `json:"-"`
}

// NewDraft starts an empty draft for a customer settling in the given
// currency.
func NewDraft(customerID int64, currency string) *Draft {
	return &Draft{
		ID:         NewToken(),
		CustomerID: customerID,
		Currency:   currency,
		Status:     DraftStatusEditing,
		CreatedAt:  time.Now(),
	}
}

// Editable reports whether the draft still accepts mutations.
func (d *Draft) Editable() bool {
	return d.Status == DraftStatusEditing
}

// Touch advances the generation token after a mutation.
func (d *Draft) Touch() {
	d.Generation++
}
