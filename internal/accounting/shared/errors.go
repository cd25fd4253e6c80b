package shared

import (
	"fmt"

	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// Sentinel errors for the accounting domain. Each wraps one of the
// shared error kinds so platform/httpx can map it to a status code.
var (
	// ErrGroupNotFound indicates a missing account group.
	ErrGroupNotFound = fmt.Errorf("accounting: account group %w", shared.ErrNotFound)
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = fmt.Errorf("accounting: account %w", shared.ErrNotFound)
	// ErrVoucherNotFound indicates a missing voucher.
	ErrVoucherNotFound = fmt.Errorf("accounting: voucher %w", shared.ErrNotFound)
	// ErrEntryNotFound indicates a missing ledger entry.
	ErrEntryNotFound = fmt.Errorf("accounting: ledger entry %w", shared.ErrNotFound)
	// ErrAccountInUse blocks deletion of an account still referenced
	// by vouchers or voucher-linked ledger entries.
	ErrAccountInUse = fmt.Errorf("accounting: account still referenced by vouchers: %w", shared.ErrConflict)
	// ErrGroupNotEmpty blocks deletion of a group that still owns
	// child groups or accounts.
	ErrGroupNotEmpty = fmt.Errorf("accounting: group still has children or accounts: %w", shared.ErrConflict)
	// ErrDuplicateCode indicates the generated code collided after retries.
	ErrDuplicateCode = fmt.Errorf("accounting: duplicate code: %w", shared.ErrConflict)
	// ErrDuplicateVoucherNo indicates the voucher number collided after retries.
	ErrDuplicateVoucherNo = fmt.Errorf("accounting: duplicate voucher number: %w", shared.ErrConflict)
)
