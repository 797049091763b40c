package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/forgeline-erp/forgeline-erp/internal/masterdata"
	"github.com/forgeline-erp/forgeline-erp/internal/shared"
)

// MasterData is the read-only reference data the order core consumes.
type MasterData interface {
	GetCustomer(ctx context.Context, id int64) (masterdata.Customer, error)
	ProductsByCustomerAndPartNos(ctx context.Context, customerID int64, partNos []string) ([]masterdata.Product, error)
}

// TaskEnqueuer schedules the procurement follow-up after an order persisted.
// Failures here are non-fatal; the order insert is the point of no return.
type TaskEnqueuer interface {
	EnqueueProcurementFollowup(ctx context.Context, orderNo string, batchIDs []string) error
}

// Service orchestrates the draft order lifecycle: reference-data resolution,
// in-memory allocation mutations, validation, assembly and persistence.
type Service struct {
	logger          *slog.Logger
	repo            Repository
	master          MasterData
	converter       CurrencyConverter
	numbers         *NumberIssuer
	drafts          *DraftStore
	enqueuer        TaskEnqueuer
	defaultCurrency string
}

// NewService constructs the order service.
func NewService(
	logger *slog.Logger,
	repo Repository,
	master MasterData,
	converter CurrencyConverter,
	numbers *NumberIssuer,
	enqueuer TaskEnqueuer,
	defaultCurrency string,
) *Service {
	return &Service{
		logger:          logger,
		repo:            repo,
		master:          master,
		converter:       converter,
		numbers:         numbers,
		drafts:          NewDraftStore(),
		enqueuer:        enqueuer,
		defaultCurrency: defaultCurrency,
	}
}

func (s *Service) ledgerFor(d *Draft) *Ledger {
	return NewLedger(s.converter, d.Currency)
}

// StartDraft opens a new draft for a customer. The order number is generated
// immediately; a generation failure is recorded as a sentinel on the draft
// rather than failing the whole form, and can be retried.
func (s *Service) StartDraft(ctx context.Context, req StartDraftRequest) (Draft, error) {
	customer, err := s.master.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Draft{}, shared.NewValidationError("customer_id", "unknown customer")
		}
		return Draft{}, &shared.ReferenceDataError{Op: "get customer", Err: err}
	}

	currency := req.Currency
	if currency == "" {
		currency = customer.Currency
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	d := NewDraft(customer.ID, currency)
	d.PaymentTerms = customer.PaymentTerms
	d.DeliveryTerms = customer.DeliveryTerms

	if no, err := s.numbers.Generate(ctx); err != nil {
		s.logger.Warn("generate order number", slog.Any("error", err))
		d.Number = OrderNumber{Source: OrderNumberGenerated, Failed: true}
	} else {
		d.Number = OrderNumber{Value: no, Source: OrderNumberGenerated}
	}

	s.drafts.Put(d)
	return s.drafts.Snapshot(d.ID)
}

// GetDraft returns a copy of the draft.
func (s *Service) GetDraft(ctx context.Context, draftID string) (Draft, error) {
	return s.drafts.Snapshot(draftID)
}

// UpdateHeader patches PO number, terms and remarks.
func (s *Service) UpdateHeader(ctx context.Context, draftID string, req UpdateDraftRequest) (Draft, error) {
	err := s.drafts.Apply(draftID, func(d *Draft) error {
		if !d.Editable() {
			return ErrDraftFinal
		}
		if req.PONumber != nil {
			d.PONumber = *req.PONumber
		}
		if req.PaymentTerms != nil {
			d.PaymentTerms = *req.PaymentTerms
		}
		if req.DeliveryTerms != nil {
			d.DeliveryTerms = *req.DeliveryTerms
		}
		if req.Remarks != nil {
			d.Remarks = *req.Remarks
		}
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// AddLineItems resolves the requested parts against the product master and
// appends line items with a single default batch each. Assembly products
// replace any previous assembly line; duplicate products are silently
// skipped.
func (s *Service) AddLineItems(ctx context.Context, draftID string, req AddLineItemsRequest) (Draft, error) {
	snap, err := s.drafts.Snapshot(draftID)
	if err != nil {
		return Draft{}, err
	}

	partNos := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		partNos = append(partNos, item.PartNo)
	}
	products, err := s.master.ProductsByCustomerAndPartNos(ctx, snap.CustomerID, partNos)
	if err != nil {
		return Draft{}, err
	}
	byPartNo := make(map[string]masterdata.Product, len(products))
	for _, p := range products {
		byPartNo[p.PartNo] = p
	}

	newItems := make([]LineItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		product, ok := byPartNo[reqItem.PartNo]
		if !ok {
			return Draft{}, shared.NewValidationError("items",
				fmt.Sprintf("part %s is not in this customer's product master", reqItem.PartNo))
		}
		newItems = append(newItems, LineItem{
			ID:          NewToken(),
			ProductKey:  ProductKey(snap.CustomerID, product.PartNo),
			PartNo:      product.PartNo,
			Description: product.Name,
			Quantity:    reqItem.Quantity,
			UnitPrice:   product.UnitPrice,
			Currency:    product.Currency,
			IsAssembly:  product.IsAssembly,
			Batches:     []ShipmentBatch{NewDefaultBatch(reqItem.Quantity)},
		})
	}

	err = s.drafts.Apply(draftID, func(d *Draft) error {
		if !d.Editable() {
			return ErrDraftFinal
		}
		for _, item := range newItems {
			if item.IsAssembly {
				d.Items = AddOrReplaceAssembly(d.Items, item)
			} else {
				d.Items = AddItems(d.Items, []LineItem{item})
			}
		}
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// UpdateLineItem applies a field patch; quantity changes rebalance the
// item's batches.
func (s *Service) UpdateLineItem(ctx context.Context, draftID, itemID string, req UpdateLineItemRequest) (Draft, error) {
	patch := LineItemPatch{
		Quantity: req.Quantity,
		Currency: req.Currency,
	}
	if req.UnitPrice != nil {
		price := decimal.NewFromFloat(*req.UnitPrice)
		patch.UnitPrice = &price
	}
	if req.DiscountPercent != nil {
		discount := decimal.NewFromFloat(*req.DiscountPercent)
		patch.DiscountPercent = &discount
	}
	if req.TaxPercent != nil {
		tax := decimal.NewFromFloat(*req.TaxPercent)
		patch.TaxPercent = &tax
	}

	err := s.drafts.Apply(draftID, func(d *Draft) error {
		if !d.Editable() {
			return ErrDraftFinal
		}
		if findItem(d.Items, itemID) == nil {
			return shared.ErrNotFound
		}
		d.Items = UpdateItem(d.Items, itemID, patch)
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// RemoveLineItem drops a line item.
func (s *Service) RemoveLineItem(ctx context.Context, draftID, itemID string) (Draft, error) {
	err := s.drafts.Apply(draftID, func(d *Draft) error {
		if !d.Editable() {
			return ErrDraftFinal
		}
		if findItem(d.Items, itemID) == nil {
			return shared.ErrNotFound
		}
		d.Items = RemoveItem(d.Items, itemID)
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// AddShipmentBatch splits off a new batch autofilled with the unallocated
// remainder. The UI disables the action at zero remainder; the service
// enforces it as well.
func (s *Service) AddShipmentBatch(ctx context.Context, draftID, itemID string) (Draft, error) {
	err := s.drafts.Apply(draftID, func(d *Draft) error {
		if !d.Editable() {
			return ErrDraftFinal
		}
		item := findItem(d.Items, itemID)
		if item == nil {
			return shared.ErrNotFound
		}
		if RemainingQuantity(*item) == 0 {
			return shared.NewValidationError("batches", "no unallocated quantity remains")
		}
		AddBatch(item)
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// UpdateShipmentBatch patches one batch's quantity or operational fields.
// Quantity edits deliberately do not rebalance siblings; the shortfall or
// excess is surfaced through the totals endpoint.
func (s *Service) UpdateShipmentBatch(ctx context.Context, draftID, itemID, batchID string, req UpdateBatchRequest) (Draft, error) {
	err := s.drafts.Apply(draftID, func(d *Draft) error {
		if !d.Editable() {
			return ErrDraftFinal
		}
		item := findItem(d.Items, itemID)
		if item == nil {
			return shared.ErrNotFound
		}
		batch := findBatch(item, batchID)
		if batch == nil {
			return shared.ErrNotFound
		}
		if req.Quantity != nil {
			batch.Quantity = *req.Quantity
		}
		if req.PlannedShipDate != nil {
			batch.PlannedShipDate = req.PlannedShipDate
		}
		if req.Notes != nil {
			batch.Notes = *req.Notes
		}
		if req.Status != nil {
			batch.Status = *req.Status
		}
		if req.TrackingNumber != nil {
			batch.TrackingNumber = *req.TrackingNumber
		}
		if req.ActualShipDate != nil {
			batch.ActualShipDate = req.ActualShipDate
		}
		if req.EstimatedArrival != nil {
			batch.EstimatedArrival = req.EstimatedArrival
		}
		if req.CustomsInfo != nil {
			batch.CustomsInfo = *req.CustomsInfo
		}
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// RemoveShipmentBatch removes a batch, preserving the never-empty invariant.
func (s *Service) RemoveShipmentBatch(ctx context.Context, draftID, itemID, batchID string) (Draft, error) {
	err := s.drafts.Apply(draftID, func(d *Draft) error {
		if !d.Editable() {
			return ErrDraftFinal
		}
		item := findItem(d.Items, itemID)
		if item == nil {
			return shared.ErrNotFound
		}
		if !RemoveBatch(item, batchID) {
			return shared.ErrNotFound
		}
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// Totals prices every line in the draft's settlement currency and reports
// allocation state per line.
func (s *Service) Totals(ctx context.Context, draftID string) (*DraftTotals, error) {
	snap, err := s.drafts.Snapshot(draftID)
	if err != nil {
		return nil, err
	}
	ledger := s.ledgerFor(&snap)

	totals := &DraftTotals{Currency: snap.Currency, OrderTotal: decimal.Zero}
	for _, item := range snap.Items {
		lineTotal, err := ledger.ItemTotal(ctx, item)
		if err != nil {
			return nil, err
		}
		totals.Lines = append(totals.Lines, LineTotal{
			ItemID:         item.ID,
			PartNo:         item.PartNo,
			Total:          lineTotal,
			Allocated:      AllocatedQuantity(item),
			Remaining:      RemainingQuantity(item),
			FullyAllocated: IsFullyAllocated(item),
		})
		totals.OrderTotal = totals.OrderTotal.Add(lineTotal)
	}
	return totals, nil
}

// RegenerateOrderNumber retries system generation after a failure. The
// result is discarded if the draft mutated while the number was being
// issued.
func (s *Service) RegenerateOrderNumber(ctx context.Context, draftID string) (Draft, error) {
	gen, err := s.drafts.Generation(draftID)
	if err != nil {
		return Draft{}, err
	}

	no, genErr := s.numbers.Generate(ctx)

	err = s.drafts.Apply(draftID, func(d *Draft) error {
		if d.Generation != gen {
			// The draft moved on while the number was in flight.
			s.logger.Info("discarding stale order number", slog.String("draft", draftID))
			return nil
		}
		if !d.Editable() {
			return ErrDraftFinal
		}
		if genErr != nil {
			d.Number = OrderNumber{Source: OrderNumberGenerated, Failed: true}
			return &shared.ReferenceDataError{Op: "generate order number", Err: genErr}
		}
		d.Number = OrderNumber{Value: no, Source: OrderNumberGenerated}
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// UseCustomOrderNumber verifies a user-supplied number against the registry
// and applies it. A check result that arrives after further edits is
// discarded.
func (s *Service) UseCustomOrderNumber(ctx context.Context, draftID string, req CustomOrderNumberRequest) (Draft, error) {
	if req.OrderNo == "" {
		return Draft{}, shared.NewValidationError("order_no", "custom order number must not be empty")
	}
	gen, err := s.drafts.Generation(draftID)
	if err != nil {
		return Draft{}, err
	}

	taken, err := s.numbers.IsTaken(ctx, req.OrderNo)
	if err != nil {
		return Draft{}, &shared.ReferenceDataError{Op: "check order number", Err: err}
	}
	if taken {
		return Draft{}, shared.NewValidationError("order_no", fmt.Sprintf("order number %s is already taken", req.OrderNo))
	}

	err = s.drafts.Apply(draftID, func(d *Draft) error {
		if d.Generation != gen {
			s.logger.Info("discarding stale order number check", slog.String("draft", draftID))
			return nil
		}
		if !d.Editable() {
			return ErrDraftFinal
		}
		d.Number = OrderNumber{Value: req.OrderNo, Source: OrderNumberCustom, Verified: true}
		d.Touch()
		return nil
	})
	if err != nil {
		return Draft{}, err
	}
	return s.drafts.Snapshot(draftID)
}

// Assemble validates the draft, materializes the persisted shape and writes
// it in one transaction. On persistence failure the draft returns to
// Editing unmodified so the user can retry. After a successful insert the
// procurement follow-up is enqueued; its failure is logged, never rolled
// back.
func (s *Service) Assemble(ctx context.Context, draftID string) (*OrderRecord, error) {
	var order *OrderRecord
	err := s.drafts.Apply(draftID, func(d *Draft) error {
		ledger := s.ledgerFor(d)
		assembled, records, err := AssembleDraft(ctx, d, ledger)
		if err != nil {
			return err
		}

		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			if err := tx.InsertOrder(ctx, *assembled); err != nil {
				return fmt.Errorf("insert order: %w", err)
			}
			if err := tx.InsertBatchRecords(ctx, records); err != nil {
				return fmt.Errorf("insert batch records: %w", err)
			}
			return nil
		})
		if err != nil {
			d.Status = DraftStatusEditing
			return &shared.PersistenceError{Op: "persist order", Err: err}
		}

		d.Status = DraftStatusPersisted
		order = assembled

		if s.enqueuer != nil {
			if err := s.enqueuer.EnqueueProcurementFollowup(ctx, assembled.OrderNo, assembled.BatchIDs); err != nil {
				s.logger.Warn("enqueue procurement follow-up",
					slog.String("order_no", assembled.OrderNo), slog.Any("error", err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder loads a persisted order header.
func (s *Service) GetOrder(ctx context.Context, orderNo string) (*OrderRecord, error) {
	return s.repo.GetOrder(ctx, orderNo)
}

func findItem(items []LineItem, itemID string) *LineItem {
	for i := range items {
		if items[i].ID == itemID {
			return &items[i]
		}
	}
	return nil
}

func findBatch(item *LineItem, batchID string) *ShipmentBatch {
	for i := range item.Batches {
		if item.Batches[i].ID == batchID {
			return &item.Batches[i]
		}
	}
	return nil
}
