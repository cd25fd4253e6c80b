package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	acctshared "github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/observability"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// CreateInput describes a standalone ledger posting.
type CreateInput struct {
	AccountID uuid.UUID
	VoucherID *uuid.UUID
	Type      TransactionType
	Amount    float64
	Narration string
	EntryDate time.Time
}

// Service posts and queries ledger entries. Every balance mutation
// happens inside one transaction with the entry write.
type Service struct {
	repo    Repository
	metrics *observability.Metrics
	now     func() time.Time
}

func NewService(repo Repository, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns entries, optionally filtered to one account and a date
// range. Both bounds are inclusive.
func (s *Service) List(ctx context.Context, accountID *uuid.UUID, from, to *time.Time) ([]Entry, error) {
	return s.repo.List(ctx, accountID, from, to)
}

// Get returns one ledger entry by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	return s.repo.Get(ctx, id)
}

// Create posts a standalone entry: the account balance moves by the
// signed delta and the entry snapshots the balance before the move.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	if in.AccountID == uuid.Nil {
		return Entry{}, shared.NewValidationError("accountId")
	}
	if !in.Type.Valid() {
		return Entry{}, shared.NewValidationError("transactionType")
	}
	if in.Amount <= 0 {
		return Entry{}, shared.NewValidationError("amount")
	}
	if in.EntryDate.IsZero() {
		in.EntryDate = s.now()
	}

	var created Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.VoucherID != nil {
			ok, err := tx.VoucherExists(ctx, *in.VoucherID)
			if err != nil {
				return err
			}
			if !ok {
				return acctshared.ErrVoucherNotFound
			}
		}
		delta := in.Type.Delta(in.Amount)
		newBalance, err := tx.ApplyDelta(ctx, in.AccountID, delta)
		if err != nil {
			return err
		}
		created, err = tx.InsertEntry(ctx, Entry{
			AccountID:       in.AccountID,
			VoucherID:       in.VoucherID,
			Type:            in.Type,
			Amount:          in.Amount,
			PreviousBalance: newBalance - delta,
			Narration:       in.Narration,
			EntryDate:       in.EntryDate,
		})
		return err
	})
	if err != nil {
		return Entry{}, err
	}
	s.metrics.CountPosting(string(in.Type))
	return created, nil
}

// Delete removes an entry and rolls its balance effect back by
// applying the inverse delta to the live balance.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ApplyDelta(ctx, entry.AccountID, -entry.Type.Delta(entry.Amount)); err != nil {
			return err
		}
		return tx.DeleteEntry(ctx, id)
	})
}
