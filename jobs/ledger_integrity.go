package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultDriftTolerance = 0.005

// LedgerIntegrityJob recomputes each account's balance from the sum of
// its signed postings and logs any drift from the stored
// current_balance. Opening-balance entries are ordinary postings, so
// the expected balance is the plain signed sum.
type LedgerIntegrityJob struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewLedgerIntegrityJob(db *pgxpool.Pool, logger *slog.Logger) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{db: db, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	tolerance := payload.Tolerance
	if tolerance <= 0 {
		tolerance = defaultDriftTolerance
	}

	rows, err := j.db.Query(ctx, `SELECT a.id, a.code, a.current_balance,
  COALESCE(SUM(CASE WHEN e.transaction_type = 'CREDIT' THEN e.amount ELSE -e.amount END), 0) AS expected
FROM accounts a
LEFT JOIN ledger_entries e ON e.account_id = a.id
GROUP BY a.id, a.code, a.current_balance`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var scanned, drifted int
	for rows.Next() {
		var id, code string
		var current, expected float64
		if err := rows.Scan(&id, &code, &current, &expected); err != nil {
			return err
		}
		scanned++
		if math.Abs(current-expected) > tolerance {
			drifted++
			j.logger.Warn("ledger drift detected",
				slog.String("account_id", id),
				slog.String("account_code", code),
				slog.Float64("current_balance", current),
				slog.Float64("expected_balance", expected),
			)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	j.logger.Info("ledger integrity scan finished",
		slog.Int("accounts", scanned),
		slog.Int("drifted", drifted),
	)
	return nil
}
