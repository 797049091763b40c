package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcurementFollowupJob writes one requisition row per persisted batch so
// purchasing can source material against the order. The parent order is
// never touched; a failure here retries without affecting it.
type ProcurementFollowupJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewProcurementFollowupJob constructs the job.
func NewProcurementFollowupJob(pool *pgxpool.Pool, logger *slog.Logger) *ProcurementFollowupJob {
	return &ProcurementFollowupJob{pool: pool, logger: logger}
}

// Handle processes TaskProcurementFollowup tasks.
func (j *ProcurementFollowupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ProcurementFollowupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	const query = `INSERT INTO procurement_requisitions (order_no, batch_id, created_at)
	               VALUES ($1, $2, now())
	               ON CONFLICT (batch_id) DO NOTHING`
	for _, batchID := range payload.BatchIDs {
		if _, err := j.pool.Exec(ctx, query, payload.OrderNo, batchID); err != nil {
			return fmt.Errorf("requisition for batch %s: %w", batchID, err)
		}
	}
	j.logger.Info("procurement follow-up complete",
		slog.String("order_no", payload.OrderNo), slog.Int("batches", len(payload.BatchIDs)))
	return nil
}
