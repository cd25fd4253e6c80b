package vouchers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/ledger"
	acctshared "github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/observability"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// numberRetries bounds recomputation of a collided voucher number.
const numberRetries = 3

// Service is the voucher posting engine. A voucher, its line entries,
// the offsetting voucher-account entry and every balance update commit
// in one transaction or not at all.
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

// List returns vouchers, optionally restricted to one type.
func (s *Service) List(ctx context.Context, voucherType *VoucherType) ([]Voucher, error) {
	if voucherType != nil && !voucherType.Valid() {
		return nil, shared.NewValidationError("voucherType")
	}
	return s.repo.List(ctx, voucherType)
}

// Get returns one voucher with its ledger entries.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (VoucherWithEntries, error) {
	voucher, err := s.repo.Get(ctx, id)
	if err != nil {
		return VoucherWithEntries{}, err
	}
	entries, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return VoucherWithEntries{}, err
	}
	return VoucherWithEntries{Voucher: voucher, Entries: entries}, nil
}

// NextNo previews the number the next voucher of this type would get.
// It reserves nothing: a concurrent creation can still take the number
// first. Creation recomputes inside its own transaction.
func (s *Service) NextNo(ctx context.Context, voucherType VoucherType) (int64, error) {
	if !voucherType.Valid() {
		return 0, shared.NewValidationError("voucherType")
	}
	return s.repo.NextVoucherNo(ctx, voucherType)
}

// Create posts a voucher: next number, one entry per line, the
// offsetting entry against the voucher account, and every balance
// move, all in one transaction. The storage-level unique constraint on
// (voucher_type, voucher_no) catches concurrent number assignment and
// the whole posting is retried on collision.
func (s *Service) Create(ctx context.Context, in CreateInput) (VoucherWithEntries, error) {
	if err := in.validate(); err != nil {
		return VoucherWithEntries{}, err
	}
	if in.VoucherDate.IsZero() {
		in.VoucherDate = s.now()
	}

	var result VoucherWithEntries
	var lastErr error
	for attempt := 0; attempt < numberRetries; attempt++ {
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			no, err := tx.NextVoucherNo(ctx, in.Type)
			if err != nil {
				return err
			}
			voucher, err := tx.InsertVoucher(ctx, Voucher{
				Type:        in.Type,
				VoucherNo:   no,
				AccountID:   in.AccountID,
				TotalAmount: in.TotalAmount,
				Description: in.Description,
				VoucherDate: in.VoucherDate,
			})
			if err != nil {
				return err
			}
			entries, err := s.postEntries(ctx, tx, voucher, in.Lines)
			if err != nil {
				return err
			}
			result = VoucherWithEntries{Voucher: voucher, Entries: entries}
			return nil
		})
		if err == nil {
			s.countPostings(result.Entries)
			return result, nil
		}
		if !errors.Is(err, acctshared.ErrDuplicateVoucherNo) {
			return VoucherWithEntries{}, err
		}
		lastErr = err
	}
	return VoucherWithEntries{}, lastErr
}

// Update patches a voucher. When Lines is non-nil every existing
// entry's balance effect is reversed first, the entries are discarded,
// and the new lines are posted fresh, all in the same transaction.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (VoucherWithEntries, error) {
	if in.Type != nil && !in.Type.Valid() {
		return VoucherWithEntries{}, shared.NewValidationError("voucherType")
	}
	if in.TotalAmount != nil && *in.TotalAmount <= 0 {
		return VoucherWithEntries{}, shared.NewValidationError("totalAmount")
	}
	if in.Lines != nil && len(in.Lines) == 0 {
		return VoucherWithEntries{}, shared.NewValidationError("lines")
	}
	if in.Lines == nil && (in.TotalAmount != nil || in.VoucherDate != nil) {
		return VoucherWithEntries{}, shared.NewValidationError("lines")
	}
	for _, line := range in.Lines {
		if line.AccountID == uuid.Nil || !line.Type.Valid() || line.Amount <= 0 {
			return VoucherWithEntries{}, shared.NewValidationError("lines")
		}
	}

	var result VoucherWithEntries
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		voucher, err := tx.GetVoucher(ctx, id)
		if err != nil {
			return err
		}
		if in.Type != nil {
			voucher.Type = *in.Type
		}
		if in.TotalAmount != nil {
			voucher.TotalAmount = *in.TotalAmount
		}
		if in.Description != nil {
			voucher.Description = *in.Description
		}
		if in.VoucherDate != nil {
			voucher.VoucherDate = *in.VoucherDate
		}
		voucher, err = tx.UpdateVoucher(ctx, voucher)
		if err != nil {
			return err
		}

		if in.Lines == nil {
			entries, err := tx.ListEntriesByVoucher(ctx, id)
			if err != nil {
				return err
			}
			result = VoucherWithEntries{Voucher: voucher, Entries: entries}
			return nil
		}

		if err := s.reverseEntries(ctx, tx, id); err != nil {
			return err
		}
		entries, err := s.postEntries(ctx, tx, voucher, in.Lines)
		if err != nil {
			return err
		}
		result = VoucherWithEntries{Voucher: voucher, Entries: entries}
		return nil
	})
	if err != nil {
		return VoucherWithEntries{}, err
	}
	if in.Lines != nil {
		s.countPostings(result.Entries)
	}
	return result, nil
}

// Delete reverses every entry's balance effect, removes the entries
// and then the voucher, in one transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetVoucher(ctx, id); err != nil {
			return err
		}
		if err := s.reverseEntries(ctx, tx, id); err != nil {
			return err
		}
		return tx.DeleteVoucher(ctx, id)
	})
}

// postEntries writes one entry per line plus the offsetting entry
// against the voucher account. Each entry snapshots the balance the
// account held immediately before its own posting.
func (s *Service) postEntries(ctx context.Context, tx TxRepository, voucher Voucher, lines []LineInput) ([]ledger.Entry, error) {
	entries := make([]ledger.Entry, 0, len(lines)+1)
	post := func(accountID uuid.UUID, transactionType ledger.TransactionType, amount float64, narration string) error {
		delta := transactionType.Delta(amount)
		newBalance, err := tx.ApplyDelta(ctx, accountID, delta)
		if err != nil {
			return err
		}
		entry, err := tx.InsertEntry(ctx, ledger.Entry{
			AccountID:       accountID,
			VoucherID:       &voucher.ID,
			Type:            transactionType,
			Amount:          amount,
			PreviousBalance: newBalance - delta,
			Narration:       narration,
			EntryDate:       voucher.VoucherDate,
		})
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	}

	for _, line := range lines {
		if err := post(line.AccountID, line.Type, line.Amount, line.Narration); err != nil {
			return nil, err
		}
	}
	if err := post(voucher.AccountID, voucher.Type.OffsetType(), voucher.TotalAmount, voucher.Description); err != nil {
		return nil, err
	}
	return entries, nil
}

// reverseEntries rolls back every entry's balance effect against the
// live balance and deletes the entries.
func (s *Service) reverseEntries(ctx context.Context, tx TxRepository, voucherID uuid.UUID) error {
	entries, err := tx.ListEntriesByVoucher(ctx, voucherID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if _, err := tx.ApplyDelta(ctx, entry.AccountID, -entry.Type.Delta(entry.Amount)); err != nil {
			return err
		}
	}
	return tx.DeleteEntriesByVoucher(ctx, voucherID)
}

func (s *Service) countPostings(entries []ledger.Entry) {
	for _, entry := range entries {
		s.metrics.CountPosting(string(entry.Type))
	}
}
