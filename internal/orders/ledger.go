package orders

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyConverter converts a monetary amount between currency codes. The
// rate source is unspecified at this level; implementations live outside the
// core (see internal/fx).
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

var hundred = decimal.NewFromInt(100)

// Ledger computes per-line and order-level monetary totals in the order's
// settlement currency.
type Ledger struct {
	converter CurrencyConverter
	currency  string
}

// NewLedger constructs a ledger settling in the given currency.
func NewLedger(converter CurrencyConverter, settlementCurrency string) *Ledger {
	return &Ledger{converter: converter, currency: settlementCurrency}
}

// SettlementCurrency returns the currency all totals are expressed in.
func (l *Ledger) SettlementCurrency() string { return l.currency }

// ItemTotal prices one line item: quantity times unit price, minus the
// discount percentage, plus the tax percentage, in that order and in the
// item's native currency. Conversion to the settlement currency happens last
// and only when the currencies actually differ, so same-currency items never
// round-trip through the converter.
func (l *Ledger) ItemTotal(ctx context.Context, item LineItem) (decimal.Decimal, error) {
	base := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	afterDiscount := base.Sub(base.Mul(item.DiscountPercent).Div(hundred))
	withTax := afterDiscount.Add(afterDiscount.Mul(item.TaxPercent).Div(hundred))

	if item.Currency == l.currency {
		return withTax, nil
	}
	converted, err := l.converter.Convert(ctx, withTax, item.Currency, l.currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert %s to %s: %w", item.Currency, l.currency, err)
	}
	return converted, nil
}

// OrderTotal sums ItemTotal over all items.
func (l *Ledger) OrderTotal(ctx context.Context, items []LineItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		lineTotal, err := l.ItemTotal(ctx, item)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(lineTotal)
	}
	return total, nil
}

// AddOrReplaceAssembly appends an assembly line item after evicting every
// existing assembly item; at most one assembly product may appear per order.
// Non-assembly items pass through unchanged.
func AddOrReplaceAssembly(items []LineItem, newItem LineItem) []LineItem {
	kept := make([]LineItem, 0, len(items)+1)
	for _, item := range items {
		if !item.IsAssembly {
			kept = append(kept, item)
		}
	}
	return append(kept, newItem)
}

// AddItems appends newItems, silently skipping any whose product key already
// exists in the list. Duplicates are not an error; the existing line wins.
func AddItems(items []LineItem, newItems []LineItem) []LineItem {
	existing := make(map[string]struct{}, len(items))
	for _, item := range items {
		existing[item.ProductKey] = struct{}{}
	}
	for _, item := range newItems {
		if _, dup := existing[item.ProductKey]; dup {
			continue
		}
		existing[item.ProductKey] = struct{}{}
		items = append(items, item)
	}
	return items
}

// RemoveItem drops a line item by id.
func RemoveItem(items []LineItem, itemID string) []LineItem {
	for i, item := range items {
		if item.ID == itemID {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// LineItemPatch enumerates the updatable line item fields. Nil fields are
// left untouched.
type LineItemPatch struct {
	Quantity        *int
	UnitPrice       *decimal.Decimal
	Currency        *string
	DiscountPercent *decimal.Decimal
	TaxPercent      *decimal.Decimal
}

// UpdateItem applies a patch to the identified line item. A quantity change
// also rebalances the item's batches so the allocation invariant stays
// satisfiable.
func UpdateItem(items []LineItem, itemID string, patch LineItemPatch) []LineItem {
	for i := range items {
		if items[i].ID != itemID {
			continue
		}
		if patch.UnitPrice != nil {
			items[i].UnitPrice = *patch.UnitPrice
		}
		if patch.Currency != nil {
			items[i].Currency = *patch.Currency
		}
		if patch.DiscountPercent != nil {
			items[i].DiscountPercent = *patch.DiscountPercent
		}
		if patch.TaxPercent != nil {
			items[i].TaxPercent = *patch.TaxPercent
		}
		if patch.Quantity != nil {
			RebalanceForQuantity(&items[i], *patch.Quantity)
		}
		break
	}
	return items
}
