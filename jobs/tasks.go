package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskProcurementFollowup creates downstream procurement requisitions
	// for a freshly persisted order.
	TaskProcurementFollowup = "procurement:followup"
)

// ProcurementFollowupPayload identifies the persisted order to follow up on.
type ProcurementFollowupPayload struct {
	OrderNo  string   `json:"order_no"`
	BatchIDs []string `json:"batch_ids"`
}

// NewProcurementFollowupTask constructs an Asynq task.
func NewProcurementFollowupTask(payload ProcurementFollowupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProcurementFollowup, data, asynq.Queue(QueueDefault)), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueProcurementFollowup schedules requisition creation for an order.
// The caller treats failures as non-fatal: the order is already persisted.
func (c *Client) EnqueueProcurementFollowup(ctx context.Context, orderNo string, batchIDs []string) error {
	task, err := NewProcurementFollowupTask(ProcurementFollowupPayload{OrderNo: orderNo, BatchIDs: batchIDs})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
