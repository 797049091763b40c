package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcurementFollowupTask(t *testing.T) {
	task, err := NewProcurementFollowupTask(ProcurementFollowupPayload{
		OrderNo:  "MO-202608-0042",
		BatchIDs: []string{"MO-202608-0042A1", "MO-202608-0042B1"},
	})
	require.NoError(t, err)

	assert.Equal(t, TaskProcurementFollowup, task.Type())

	var payload ProcurementFollowupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "MO-202608-0042", payload.OrderNo)
	assert.Len(t, payload.BatchIDs, 2)
}

func TestProcurementFollowupJob_BadPayloadSkipsRetry(t *testing.T) {
	job := NewProcurementFollowupJob(nil, nil)
	task := asynq.NewTask(TaskProcurementFollowup, []byte("{not json"))

	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
