package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingConverter struct {
	calls      int
	lastAmount decimal.Decimal
	lastFrom   string
	lastTo     string
	rate       decimal.Decimal
	err        error
}

func (c *countingConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	c.calls++
	c.lastAmount = amount
	c.lastFrom = from
	c.lastTo = to
	if c.err != nil {
		return decimal.Zero, c.err
	}
	return amount.Mul(c.rate), nil
}

func pricedItem(quantity int, unitPrice, discount, tax, currency string) LineItem {
	return LineItem{
		ID:              NewToken(),
		PartNo:          "PN-200",
		Quantity:        quantity,
		UnitPrice:       decimal.RequireFromString(unitPrice),
		DiscountPercent: decimal.RequireFromString(discount),
		TaxPercent:      decimal.RequireFromString(tax),
		Currency:        currency,
	}
}

func TestItemTotal_DiscountThenTax(t *testing.T) {
	conv := &countingConverter{rate: decimal.NewFromInt(2)}
	ledger := NewLedger(conv, "USD")

	// 10 * 5 = 50, minus 10% = 45, plus 5% tax = 47.25
	item := pricedItem(10, "5", "10", "5", "USD")

	total, err := ledger.ItemTotal(context.Background(), item)
	require.NoError(t, err)

	assert.True(t, total.Equal(decimal.RequireFromString("47.25")), "got %s", total)
	assert.Equal(t, 0, conv.calls, "same-currency items must not touch the converter")
}

func TestItemTotal_ConvertsPostTaxAmountOnce(t *testing.T) {
	conv := &countingConverter{rate: decimal.NewFromInt(2)}
	ledger := NewLedger(conv, "USD")

	item := pricedItem(10, "5", "10", "5", "EUR")

	total, err := ledger.ItemTotal(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, 1, conv.calls)
	assert.True(t, conv.lastAmount.Equal(decimal.RequireFromString("47.25")))
	assert.Equal(t, "EUR", conv.lastFrom)
	assert.Equal(t, "USD", conv.lastTo)
	assert.True(t, total.Equal(decimal.RequireFromString("94.5")), "got %s", total)
}

func TestItemTotal_ZeroRatesDefault(t *testing.T) {
	ledger := NewLedger(&countingConverter{}, "USD")

	item := pricedItem(3, "7.50", "0", "0", "USD")

	total, err := ledger.ItemTotal(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("22.5")))
}

func TestOrderTotal_SumsLines(t *testing.T) {
	conv := &countingConverter{rate: decimal.NewFromInt(2)}
	ledger := NewLedger(conv, "USD")

	items := []LineItem{
		pricedItem(10, "5", "10", "5", "USD"), // 47.25
		pricedItem(1, "100", "0", "0", "EUR"), // 100 -> 200
	}

	total, err := ledger.OrderTotal(context.Background(), items)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("247.25")), "got %s", total)
	assert.Equal(t, 1, conv.calls)
}

func TestAddOrReplaceAssembly_EvictsPriorAssembly(t *testing.T) {
	plain1 := LineItem{ID: "a", ProductKey: "1:A"}
	plain2 := LineItem{ID: "b", ProductKey: "1:B"}
	oldAssembly := LineItem{ID: "c", ProductKey: "1:ASM-1", IsAssembly: true}
	newAssembly := LineItem{ID: "d", ProductKey: "1:ASM-2", IsAssembly: true}

	items := AddOrReplaceAssembly([]LineItem{plain1, oldAssembly, plain2}, newAssembly)

	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "d", items[2].ID)
}

func TestAddItems_SkipsDuplicateProducts(t *testing.T) {
	existing := []LineItem{{ID: "a", ProductKey: "1:PN-1"}}

	items := AddItems(existing, []LineItem{
		{ID: "b", ProductKey: "1:PN-1"},
		{ID: "c", ProductKey: "1:PN-2"},
	})

	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "c", items[1].ID)
}

func TestRemoveItem(t *testing.T) {
	items := []LineItem{{ID: "a"}, {ID: "b"}}

	items = RemoveItem(items, "a")

	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)

	assert.Len(t, RemoveItem(items, "missing"), 1)
}

func TestUpdateItem_QuantityRebalancesBatches(t *testing.T) {
	item := itemWithBatches(60, 10, 20, 30)
	items := []LineItem{item}

	quantity := 30
	items = UpdateItem(items, item.ID, LineItemPatch{Quantity: &quantity})

	assert.Equal(t, 30, items[0].Quantity)
	assert.Equal(t, 30, AllocatedQuantity(items[0]))
}

func TestUpdateItem_CommercialFields(t *testing.T) {
	items := []LineItem{{ID: "a", Currency: "USD"}}

	price := decimal.RequireFromString("9.99")
	currency := "JPY"
	items = UpdateItem(items, "a", LineItemPatch{UnitPrice: &price, Currency: &currency})

	assert.True(t, items[0].UnitPrice.Equal(price))
	assert.Equal(t, "JPY", items[0].Currency)
}
