package orders

import "strconv"

// Composite batch identifiers are derived once the order's own number is
// known: order number + product index letter + batch number. The triple is
// assumed injective; no collision detection happens beyond uniqueness of the
// inputs.

// ProductIndexLetter maps a zero-based line item position to a stable letter
// code: A..Z for the first 26 positions, then AA, AB, ... in spreadsheet
// column style.
func ProductIndexLetter(position int) string {
	if position < 0 {
		return ""
	}
	letters := make([]byte, 0, 2)
	n := position
	for {
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(letters)
}

// BatchID derives the deterministic composite identifier for one batch.
func BatchID(orderNo, indexLetter string, batchNumber int) string {
	return orderNo + indexLetter + strconv.Itoa(batchNumber)
}

// AssignBatchIDs returns the composite id for every batch of every item,
// keyed by batch token, walking items in their current order.
func AssignBatchIDs(orderNo string, items []LineItem) map[string]string {
	assigned := make(map[string]string)
	for i, item := range items {
		letter := ProductIndexLetter(i)
		for _, batch := range item.Batches {
			assigned[batch.ID] = BatchID(orderNo, letter, batch.BatchNumber)
		}
	}
	return assigned
}
