package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline-erp/forgeline-erp/internal/shared"
)

func assemblableDraft() *Draft {
	d := NewDraft(7, "USD")
	d.PONumber = "PO-9001"
	d.Number = OrderNumber{Value: "MO-202608-0042", Source: OrderNumberGenerated}

	item := pricedItem(10, "5", "10", "5", "USD")
	item.Batches = []ShipmentBatch{NewDefaultBatch(10)}
	d.Items = []LineItem{item}
	return d
}

func validationField(t *testing.T, err error) string {
	t.Helper()
	var v *shared.ValidationError
	require.ErrorAs(t, err, &v)
	return v.Field
}

func TestValidateDraft_FirstFailureWins(t *testing.T) {
	// Missing customer and PO number at once: the customer rule runs first.
	d := assemblableDraft()
	d.CustomerID = 0
	d.PONumber = ""

	assert.Equal(t, "customer_id", validationField(t, ValidateDraft(d)))
}

func TestValidateDraft_RequiresItems(t *testing.T) {
	d := assemblableDraft()
	d.Items = nil

	assert.Equal(t, "items", validationField(t, ValidateDraft(d)))
}

func TestValidateDraft_RequiresPONumber(t *testing.T) {
	d := assemblableDraft()
	d.PONumber = ""

	assert.Equal(t, "po_number", validationField(t, ValidateDraft(d)))
}

func TestValidateDraft_RequiresBatches(t *testing.T) {
	d := assemblableDraft()
	d.Items[0].Batches = nil

	assert.Equal(t, "items[0].batches", validationField(t, ValidateDraft(d)))
}

func TestValidateDraft_RequiresExactAllocation(t *testing.T) {
	d := assemblableDraft()
	d.Items[0].Batches[0].Quantity = 9

	err := ValidateDraft(d)
	assert.Equal(t, "items[0].batches", validationField(t, err))
	assert.Contains(t, err.Error(), "9 of 10")

	// Over-allocation is rejected the same way; the rule wants equality.
	d.Items[0].Batches[0].Quantity = 11
	assert.Equal(t, "items[0].batches", validationField(t, ValidateDraft(d)))
}

func TestValidateDraft_CustomNumberMustBeVerified(t *testing.T) {
	d := assemblableDraft()
	d.Number = OrderNumber{Value: "CUSTOM-1", Source: OrderNumberCustom}

	assert.Equal(t, "order_no", validationField(t, ValidateDraft(d)))

	d.Number.Verified = true
	assert.NoError(t, ValidateDraft(d))
}

func TestValidateDraft_FailedGeneration(t *testing.T) {
	d := assemblableDraft()
	d.Number = OrderNumber{Source: OrderNumberGenerated, Failed: true}

	assert.Equal(t, "order_no", validationField(t, ValidateDraft(d)))
}

func TestAssembleDraft_RejectionKeepsDraftEditable(t *testing.T) {
	d := assemblableDraft()
	d.PONumber = ""
	ledger := NewLedger(&countingConverter{}, "USD")

	_, _, err := AssembleDraft(context.Background(), d, ledger)
	require.Error(t, err)

	assert.Equal(t, DraftStatusEditing, d.Status)
	assert.NotEmpty(t, d.LastRejection)
	assert.Len(t, d.Items, 1, "rejection must not discard draft data")
}

func TestAssembleDraft_Success(t *testing.T) {
	d := assemblableDraft()
	second := pricedItem(6, "2", "0", "0", "USD")
	second.Batches = []ShipmentBatch{
		{ID: NewToken(), BatchNumber: 1, Quantity: 4, Status: BatchStatusPending},
		{ID: NewToken(), BatchNumber: 2, Quantity: 2, Status: BatchStatusPending},
	}
	d.Items = append(d.Items, second)

	ledger := NewLedger(&countingConverter{}, "USD")

	order, records, err := AssembleDraft(context.Background(), d, ledger)
	require.NoError(t, err)

	assert.Equal(t, DraftStatusAssembled, d.Status)
	assert.Empty(t, d.LastRejection)

	assert.Equal(t, "MO-202608-0042", order.OrderNo)
	assert.Equal(t, int64(7), order.CustomerID)
	assert.Equal(t, "USD", order.Currency)
	// 47.25 + 12
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("59.25")), "got %s", order.TotalAmount)

	require.Len(t, records, 3)
	assert.Equal(t, "MO-202608-0042A1", records[0].BatchID)
	assert.Equal(t, "MO-202608-0042B1", records[1].BatchID)
	assert.Equal(t, "MO-202608-0042B2", records[2].BatchID)
	assert.ElementsMatch(t, order.BatchIDs, []string{records[0].BatchID, records[1].BatchID, records[2].BatchID})

	// Flattened rows carry the parent line's commercial fields.
	assert.Equal(t, 4, records[1].Quantity)
	assert.Equal(t, "MO-202608-0042", records[1].OrderNo)
	assert.True(t, records[1].LineTotal.Equal(decimal.NewFromInt(12)))
	assert.True(t, records[2].LineTotal.Equal(decimal.NewFromInt(12)))
}

func TestAssembleDraft_FinalDraftRefused(t *testing.T) {
	d := assemblableDraft()
	d.Status = DraftStatusPersisted

	_, _, err := AssembleDraft(context.Background(), d, NewLedger(&countingConverter{}, "USD"))
	assert.ErrorIs(t, err, ErrDraftFinal)
}
