// Package scheduler runs the periodic ingestion sweep over asynq.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskIngestionSweep = "ingestion.sweep"

type IngestionSweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewIngestionSweepTask(payload IngestionSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIngestionSweep, data), nil
}

func ParseIngestionSweepPayload(task *asynq.Task) (IngestionSweepPayload, error) {
	var payload IngestionSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return IngestionSweepPayload{}, err
	}
	return payload, nil
}
