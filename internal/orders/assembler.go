package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/forgeline-erp/forgeline-erp/internal/shared"
)

// ValidateDraft checks draft completeness before assembly. Rules run in a
// fixed order and the first failure wins; each failure is a distinct,
// field-attributable ValidationError.
func ValidateDraft(d *Draft) error {
	if d.CustomerID == 0 {
		return shared.NewValidationError("customer_id", "customer must be selected")
	}
	if len(d.Items) == 0 {
		return shared.NewValidationError("items", "at least one line item is required")
	}
	if d.PONumber == "" {
		return shared.NewValidationError("po_number", "PO number must not be empty")
	}
	for i, item := range d.Items {
		if len(item.Batches) == 0 {
			return shared.NewValidationError(
				fmt.Sprintf("items[%d].batches", i),
				fmt.Sprintf("part %s has no shipment batches", item.PartNo),
			)
		}
	}
	for i, item := range d.Items {
		if allocated := AllocatedQuantity(item); allocated != item.Quantity {
			return shared.NewValidationError(
				fmt.Sprintf("items[%d].batches", i),
				fmt.Sprintf("part %s has %d of %d units allocated to batches", item.PartNo, allocated, item.Quantity),
			)
		}
	}
	switch d.Number.Source {
	case OrderNumberCustom:
		if d.Number.Value == "" {
			return shared.NewValidationError("order_no", "custom order number must not be empty")
		}
		if !d.Number.Verified {
			return shared.NewValidationError("order_no", "custom order number has not been checked for uniqueness")
		}
	default:
		if d.Number.Failed || d.Number.Value == "" {
			return shared.NewValidationError("order_no", "order number generation failed; retry before assembling")
		}
	}
	return nil
}

// AssembleDraft validates the draft and, if it passes, materializes the
// persisted representation: one parent order record plus one flattened batch
// record per (line item, batch) pair, each carrying its composite identifier
// from the identity assigner.
//
// On a validation failure the draft returns to Editing with the rejection
// reason recorded. On success the draft transitions to Assembled and must
// not be mutated further.
func AssembleDraft(ctx context.Context, d *Draft, ledger *Ledger) (*OrderRecord, []BatchRecord, error) {
	if !d.Editable() {
		return nil, nil, ErrDraftFinal
	}

	if err := ValidateDraft(d); err != nil {
		d.Status = DraftStatusEditing
		d.LastRejection = err.Error()
		return nil, nil, err
	}
	d.LastRejection = ""

	assigned := AssignBatchIDs(d.Number.Value, d.Items)

	records := make([]BatchRecord, 0, len(assigned))
	batchIDs := make([]string, 0, len(assigned))
	for _, item := range d.Items {
		lineTotal, err := ledger.ItemTotal(ctx, item)
		if err != nil {
			return nil, nil, err
		}
		for _, batch := range item.Batches {
			id := assigned[batch.ID]
			batchIDs = append(batchIDs, id)
			records = append(records, BatchRecord{
				BatchID:          id,
				OrderNo:          d.Number.Value,
				PartNo:           item.PartNo,
				Description:      item.Description,
				Quantity:         batch.Quantity,
				UnitPrice:        item.UnitPrice,
				Currency:         item.Currency,
				DiscountPercent:  item.DiscountPercent,
				TaxPercent:       item.TaxPercent,
				LineTotal:        lineTotal,
				PlannedShipDate:  batch.PlannedShipDate,
				Status:           batch.Status,
				Notes:            batch.Notes,
				TrackingNumber:   batch.TrackingNumber,
				ActualShipDate:   batch.ActualShipDate,
				EstimatedArrival: batch.EstimatedArrival,
				CustomsInfo:      batch.CustomsInfo,
			})
		}
	}

	total, err := ledger.OrderTotal(ctx, d.Items)
	if err != nil {
		return nil, nil, err
	}

	order := &OrderRecord{
		OrderNo:       d.Number.Value,
		CustomerID:    d.CustomerID,
		PONumber:      d.PONumber,
		PaymentTerms:  d.PaymentTerms,
		DeliveryTerms: d.DeliveryTerms,
		Remarks:       d.Remarks,
		Currency:      ledger.SettlementCurrency(),
		TotalAmount:   total,
		BatchIDs:      batchIDs,
		CreatedAt:     time.Now(),
	}

	d.Status = DraftStatusAssembled
	return order, records, nil
}
