package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity recomputes account balances from postings
	// and reports drift.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskHierarchyWarmup pre-builds the hierarchy report cache.
	TaskHierarchyWarmup = "reports:hierarchy_warmup"
)

// LedgerIntegrityPayload configures an integrity scan.
type LedgerIntegrityPayload struct {
	// Tolerance is the absolute drift below which an account is
	// considered consistent. Guards against float rounding noise.
	Tolerance float64 `json:"tolerance"`
}

// NewLedgerIntegrityTask constructs an integrity scan task.
func NewLedgerIntegrityTask(tolerance float64) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{Tolerance: tolerance})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewHierarchyWarmupTask constructs a cache warmup task.
func NewHierarchyWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskHierarchyWarmup, nil)
}
