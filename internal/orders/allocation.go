package orders

import (
	"math"
	"time"
)

// Batch allocation keeps the invariant that a line item's batch quantities
// can sum exactly to its ordered quantity, and that the batch list is never
// empty. All operations here are pure in-memory transformations; there is no
// I/O at this layer.

// NewDefaultBatch returns the single initial batch for a fresh line item:
// number 1, the full ordered quantity, and a planned ship date one default
// lead time out.
func NewDefaultBatch(quantity int) ShipmentBatch {
	shipDate := time.Now().Add(DefaultLeadTime)
	return ShipmentBatch{
		ID:              NewToken(),
		BatchNumber:     1,
		Quantity:        quantity,
		PlannedShipDate: &shipDate,
		Status:          BatchStatusPending,
	}
}

// RebalanceForQuantity redistributes batch quantities after the ordered
// quantity changed.
//
// A single batch is set to the new quantity directly. Multiple batches are
// scaled by newQuantity/oldTotal with each batch rounded to the nearest
// integer independently; the rounding drift is then added in full to the
// first batch in slice order so the sum lands exactly on newQuantity. When
// the pre-existing total is zero the batches are left unchanged.
func RebalanceForQuantity(item *LineItem, newQuantity int) {
	item.Quantity = newQuantity
	if len(item.Batches) == 0 {
		return
	}
	if len(item.Batches) == 1 {
		item.Batches[0].Quantity = newQuantity
		return
	}

	oldTotal := AllocatedQuantity(*item)
	if oldTotal == 0 {
		return
	}

	ratio := float64(newQuantity) / float64(oldTotal)
	sum := 0
	for i := range item.Batches {
		scaled := int(math.Round(float64(item.Batches[i].Quantity) * ratio))
		item.Batches[i].Quantity = scaled
		sum += scaled
	}
	// Independent rounding can leave a small integer delta; the first batch
	// absorbs all of it.
	item.Batches[0].Quantity += newQuantity - sum
}

// AddBatch appends a new batch numbered max(existing)+1 whose quantity
// autofills the unallocated remainder. Callers are expected to prevent the
// call when RemainingQuantity is already zero; the function itself does not
// reject it.
func AddBatch(item *LineItem) *ShipmentBatch {
	next := 1
	for _, b := range item.Batches {
		if b.BatchNumber >= next {
			next = b.BatchNumber + 1
		}
	}
	shipDate := time.Now().Add(DefaultLeadTime)
	batch := ShipmentBatch{
		ID:              NewToken(),
		BatchNumber:     next,
		Quantity:        RemainingQuantity(*item),
		PlannedShipDate: &shipDate,
		Status:          BatchStatusPending,
	}
	item.Batches = append(item.Batches, batch)
	return &item.Batches[len(item.Batches)-1]
}

// RemoveBatch drops a batch by id while preserving the never-empty invariant:
// removing the last batch resets the item to a single default batch sized to
// the full ordered quantity, and removing down to one survivor folds the
// removed quantity into it. With two or more survivors the batch is simply
// dropped and no rebalancing happens; the shortfall is surfaced through
// RemainingQuantity instead.
func RemoveBatch(item *LineItem, batchID string) bool {
	idx := -1
	for i, b := range item.Batches {
		if b.ID == batchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	if len(item.Batches) == 1 {
		item.Batches = []ShipmentBatch{NewDefaultBatch(item.Quantity)}
		return true
	}

	removed := item.Batches[idx]
	item.Batches = append(item.Batches[:idx], item.Batches[idx+1:]...)
	if len(item.Batches) == 1 {
		item.Batches[0].Quantity += removed.Quantity
	}
	return true
}

// AllocatedQuantity sums the current batch quantities.
func AllocatedQuantity(item LineItem) int {
	total := 0
	for _, b := range item.Batches {
		total += b.Quantity
	}
	return total
}

// RemainingQuantity reports how much of the ordered quantity is not yet
// assigned to a batch, clamped at zero.
func RemainingQuantity(item LineItem) int {
	remaining := item.Quantity - AllocatedQuantity(item)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyAllocated reports whether the batch quantities sum exactly to the
// ordered quantity and at least one batch exists.
func IsFullyAllocated(item LineItem) bool {
	return len(item.Batches) > 0 && AllocatedQuantity(item) == item.Quantity
}
