package vouchers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/ledger"
)

// VoucherType is the kind of grouped transaction document.
type VoucherType string

const (
	VoucherReceipt VoucherType = "RECEIPT"
	VoucherPayment VoucherType = "PAYMENT"
)

// Valid reports whether t is a known voucher type.
func (t VoucherType) Valid() bool {
	return t == VoucherReceipt || t == VoucherPayment
}

// OffsetType is the posting direction of the offsetting entry against
// the voucher account. One sign convention applies everywhere (CREDIT
// increases a balance), so receipts credit cash and payments debit it.
func (t VoucherType) OffsetType() ledger.TransactionType {
	if t == VoucherReceipt {
		return ledger.TransactionCredit
	}
	return ledger.TransactionDebit
}

// Voucher is a grouped financial transaction. VoucherNo increases
// monotonically within each type and is never reused.
type Voucher struct {
	ID          uuid.UUID   `json:"id"`
	Type        VoucherType `json:"voucherType"`
	VoucherNo   int64       `json:"voucherNo"`
	AccountID   uuid.UUID   `json:"accountId"`
	TotalAmount float64     `json:"totalAmount"`
	Description string      `json:"description"`
	VoucherDate time.Time   `json:"voucherDate"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
