package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Repository provides PostgreSQL backed persistence for assembled orders.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GenerateOrderNumber(ctx context.Context, prefix string, at time.Time) (string, error)
	IsOrderNumberTaken(ctx context.Context, orderNo string) (bool, error)
	GetOrder(ctx context.Context, orderNo string) (*OrderRecord, error)
	UpdateOrder(ctx context.Context, orderNo string, updates map[string]interface{}) error
}

// TxRepository exposes the transactional write operations.
type TxRepository interface {
	InsertOrder(ctx context.Context, order OrderRecord) error
	InsertBatchRecords(ctx context.Context, records []BatchRecord) error
}

// PgRepository implements Repository on a pgx pool.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *PgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GenerateOrderNumber issues the next number in a month-scoped sequence,
// formatted PREFIX-YYYYMM-NNNN.
func (r *PgRepository) GenerateOrderNumber(ctx context.Context, prefix string, at time.Time) (string, error) {
	period := at.Format("200601")
	const query = `INSERT INTO order_number_seq (period, counter) VALUES ($1, 1)
	               ON CONFLICT (period) DO UPDATE SET counter = order_number_seq.counter + 1
	               RETURNING counter`
	var counter int64
	if err := r.pool.QueryRow(ctx, query, period).Scan(&counter); err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, period, counter), nil
}

// IsOrderNumberTaken reports whether an order with this number was already
// persisted.
func (r *PgRepository) IsOrderNumberTaken(ctx context.Context, orderNo string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM manufacturing_orders WHERE order_no = $1)`
	var taken bool
	if err := r.pool.QueryRow(ctx, query, orderNo).Scan(&taken); err != nil {
		return false, fmt.Errorf("check order number: %w", err)
	}
	return taken, nil
}

// GetOrder loads one persisted order header.
func (r *PgRepository) GetOrder(ctx context.Context, orderNo string) (*OrderRecord, error) {
	const query = `SELECT order_no, customer_id, po_number, payment_terms, delivery_terms, remarks,
	                      currency, total_amount, batch_ids, created_at
	               FROM manufacturing_orders WHERE order_no = $1`
	var o OrderRecord
	err := r.pool.QueryRow(ctx, query, orderNo).Scan(
		&o.OrderNo, &o.CustomerID, &o.PONumber, &o.PaymentTerms, &o.DeliveryTerms, &o.Remarks,
		&o.Currency, &o.TotalAmount, &o.BatchIDs, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrder patches header fields of a persisted order.
func (r *PgRepository) UpdateOrder(ctx context.Context, orderNo string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE manufacturing_orders SET `
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for field, value := range updates {
		if i > 1 {
			query += ", "
		}
		query += fmt.Sprintf("%s = $%d", field, i)
		args = append(args, value)
		i++
	}
	query += fmt.Sprintf(" WHERE order_no = $%d", i)
	args = append(args, orderNo)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) InsertOrder(ctx context.Context, order OrderRecord) error {
	const query = `INSERT INTO manufacturing_orders
	               (order_no, customer_id, po_number, payment_terms, delivery_terms, remarks,
	                currency, total_amount, batch_ids, created_at)
	               VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := t.tx.Exec(ctx, query,
		order.OrderNo, order.CustomerID, order.PONumber, order.PaymentTerms, order.DeliveryTerms,
		order.Remarks, order.Currency, order.TotalAmount, order.BatchIDs, order.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: order %s", ErrAlreadyExists, order.OrderNo)
	}
	return err
}

func (t *txRepo) InsertBatchRecords(ctx context.Context, records []BatchRecord) error {
	const query = `INSERT INTO order_batches
	               (batch_id, order_no, part_no, description, quantity, unit_price, currency,
	                discount_percent, tax_percent, line_total, planned_ship_date, status, notes,
	                tracking_number, actual_ship_date, estimated_arrival, customs_info)
	               VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	for _, rec := range records {
		_, err := t.tx.Exec(ctx, query,
			rec.BatchID, rec.OrderNo, rec.PartNo, rec.Description, rec.Quantity, rec.UnitPrice,
			rec.Currency, rec.DiscountPercent, rec.TaxPercent, rec.LineTotal, rec.PlannedShipDate,
			rec.Status, rec.Notes, rec.TrackingNumber, rec.ActualShipDate, rec.EstimatedArrival,
			rec.CustomsInfo,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: batch %s", ErrAlreadyExists, rec.BatchID)
		}
		if err != nil {
			return fmt.Errorf("insert batch %s: %w", rec.BatchID, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
