package vouchers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/ledger"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// LineInput is one voucher line posting against a plain account.
type LineInput struct {
	AccountID uuid.UUID              `json:"accountId"`
	Type      ledger.TransactionType `json:"transactionType"`
	Amount    float64                `json:"amount"`
	Narration string                 `json:"narration"`
}

// CreateInput carries everything needed to post a voucher.
type CreateInput struct {
	Type        VoucherType `json:"voucherType"`
	AccountID   uuid.UUID   `json:"accountId"`
	TotalAmount float64     `json:"totalAmount"`
	Description string      `json:"description"`
	VoucherDate time.Time   `json:"voucherDate"`
	Lines       []LineInput `json:"lines"`
}

// UpdateInput patches a voucher. Nil fields keep previous values; a
// non-nil Lines slice replaces every existing entry after reversal.
// TotalAmount and VoucherDate changes must carry Lines, otherwise the
// stored voucher would disagree with its untouched postings.
type UpdateInput struct {
	Type        *VoucherType `json:"voucherType"`
	TotalAmount *float64     `json:"totalAmount"`
	Description *string      `json:"description"`
	VoucherDate *time.Time   `json:"voucherDate"`
	Lines       []LineInput  `json:"lines"`
}

// VoucherWithEntries is a voucher together with its ledger entries.
type VoucherWithEntries struct {
	Voucher
	Entries []ledger.Entry `json:"entries"`
}

func (in CreateInput) validate() error {
	var missing []string
	if !in.Type.Valid() {
		missing = append(missing, "voucherType")
	}
	if in.AccountID == uuid.Nil {
		missing = append(missing, "accountId")
	}
	if in.TotalAmount <= 0 {
		missing = append(missing, "totalAmount")
	}
	if len(in.Lines) == 0 {
		missing = append(missing, "lines")
	}
	for _, line := range in.Lines {
		if line.AccountID == uuid.Nil || !line.Type.Valid() || line.Amount <= 0 {
			missing = append(missing, "lines")
			break
		}
	}
	if len(missing) > 0 {
		return shared.NewValidationError(missing...)
	}
	return nil
}
