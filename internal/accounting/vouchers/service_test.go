package vouchers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/ledger"
	acctshared "github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// fakeRepo keeps vouchers, entries and balances in memory and mimics
// the SQL layer's rollback by snapshotting state around WithTx.
type fakeRepo struct {
	balances   map[uuid.UUID]float64
	vouchers   map[uuid.UUID]Voucher
	entries    map[uuid.UUID]ledger.Entry
	entryOrder []uuid.UUID
	insertErrs []error
	attempt    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		balances: map[uuid.UUID]float64{},
		vouchers: map[uuid.UUID]Voucher{},
		entries:  map[uuid.UUID]ledger.Entry{},
	}
}

func (f *fakeRepo) snapshot() *fakeRepo {
	clone := newFakeRepo()
	for k, v := range f.balances {
		clone.balances[k] = v
	}
	for k, v := range f.vouchers {
		clone.vouchers[k] = v
	}
	for k, v := range f.entries {
		clone.entries[k] = v
	}
	clone.entryOrder = append([]uuid.UUID(nil), f.entryOrder...)
	return clone
}

func (f *fakeRepo) restore(snap *fakeRepo) {
	f.balances = snap.balances
	f.vouchers = snap.vouchers
	f.entries = snap.entries
	f.entryOrder = snap.entryOrder
}

func (f *fakeRepo) List(ctx context.Context, voucherType *VoucherType) ([]Voucher, error) {
	var out []Voucher
	for _, v := range f.vouchers {
		if voucherType == nil || v.Type == *voucherType {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	return f.GetVoucher(ctx, id)
}

func (f *fakeRepo) ListEntries(ctx context.Context, voucherID uuid.UUID) ([]ledger.Entry, error) {
	return f.ListEntriesByVoucher(ctx, voucherID)
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snap := f.snapshot()
	if err := fn(ctx, f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeRepo) NextVoucherNo(ctx context.Context, voucherType VoucherType) (int64, error) {
	var max int64
	for _, v := range f.vouchers {
		if v.Type == voucherType && v.VoucherNo > max {
			max = v.VoucherNo
		}
	}
	return max + 1, nil
}

func (f *fakeRepo) InsertVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	if f.attempt < len(f.insertErrs) {
		err := f.insertErrs[f.attempt]
		f.attempt++
		if err != nil {
			return Voucher{}, err
		}
	}
	for _, existing := range f.vouchers {
		if existing.Type == v.Type && existing.VoucherNo == v.VoucherNo {
			return Voucher{}, acctshared.ErrDuplicateVoucherNo
		}
	}
	v.ID = uuid.New()
	f.vouchers[v.ID] = v
	return v, nil
}

func (f *fakeRepo) GetVoucher(ctx context.Context, id uuid.UUID) (Voucher, error) {
	v, ok := f.vouchers[id]
	if !ok {
		return Voucher{}, acctshared.ErrVoucherNotFound
	}
	return v, nil
}

func (f *fakeRepo) UpdateVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	if _, ok := f.vouchers[v.ID]; !ok {
		return Voucher{}, acctshared.ErrVoucherNotFound
	}
	f.vouchers[v.ID] = v
	return v, nil
}

func (f *fakeRepo) DeleteVoucher(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.vouchers[id]; !ok {
		return acctshared.ErrVoucherNotFound
	}
	delete(f.vouchers, id)
	return nil
}

func (f *fakeRepo) InsertEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	e.ID = uuid.New()
	f.entries[e.ID] = e
	f.entryOrder = append(f.entryOrder, e.ID)
	return e, nil
}

func (f *fakeRepo) ListEntriesByVoucher(ctx context.Context, voucherID uuid.UUID) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, id := range f.entryOrder {
		e, ok := f.entries[id]
		if ok && e.VoucherID != nil && *e.VoucherID == voucherID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteEntriesByVoucher(ctx context.Context, voucherID uuid.UUID) error {
	for id, e := range f.entries {
		if e.VoucherID != nil && *e.VoucherID == voucherID {
			delete(f.entries, id)
		}
	}
	return nil
}

func (f *fakeRepo) ApplyDelta(ctx context.Context, accountID uuid.UUID, delta float64) (float64, error) {
	if _, ok := f.balances[accountID]; !ok {
		return 0, acctshared.ErrAccountNotFound
	}
	f.balances[accountID] += delta
	return f.balances[accountID], nil
}

func TestCreatePaymentRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	lineAcc := uuid.New()
	cashAcc := uuid.New()
	repo.balances[lineAcc] = 500
	repo.balances[cashAcc] = 1000
	svc := NewService(repo, nil)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherPayment,
		AccountID:   cashAcc,
		TotalAmount: 100,
		Description: "office rent",
		Lines: []LineInput{
			{AccountID: lineAcc, Type: ledger.TransactionDebit, Amount: 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.VoucherNo)

	// line debit pulls the expense account down, the offsetting debit
	// drains cash
	assert.Equal(t, 400.0, repo.balances[lineAcc])
	assert.Equal(t, 900.0, repo.balances[cashAcc])

	require.Len(t, result.Entries, 2)
	line, offset := result.Entries[0], result.Entries[1]
	assert.Equal(t, lineAcc, line.AccountID)
	assert.Equal(t, ledger.TransactionDebit, line.Type)
	assert.Equal(t, 500.0, line.PreviousBalance)
	assert.Equal(t, cashAcc, offset.AccountID)
	assert.Equal(t, ledger.TransactionDebit, offset.Type)
	assert.Equal(t, 1000.0, offset.PreviousBalance)
	assert.Equal(t, 100.0, offset.Amount)
}

func TestCreateReceiptCreditsCash(t *testing.T) {
	repo := newFakeRepo()
	lineAcc := uuid.New()
	cashAcc := uuid.New()
	repo.balances[lineAcc] = 200
	repo.balances[cashAcc] = 50
	svc := NewService(repo, nil)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherReceipt,
		AccountID:   cashAcc,
		TotalAmount: 80,
		Lines: []LineInput{
			{AccountID: lineAcc, Type: ledger.TransactionDebit, Amount: 80},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, repo.balances[lineAcc])
	assert.Equal(t, 130.0, repo.balances[cashAcc])
	assert.Equal(t, ledger.TransactionCredit, result.Entries[1].Type)
}

func TestNextNoPreviewMatchesCreation(t *testing.T) {
	repo := newFakeRepo()
	cashAcc := uuid.New()
	lineAcc := uuid.New()
	repo.balances[cashAcc] = 0
	repo.balances[lineAcc] = 0
	svc := NewService(repo, nil)

	preview, err := svc.NextNo(context.Background(), VoucherReceipt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), preview)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherReceipt,
		AccountID:   cashAcc,
		TotalAmount: 10,
		Lines:       []LineInput{{AccountID: lineAcc, Type: ledger.TransactionCredit, Amount: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, preview, result.VoucherNo)

	after, err := svc.NextNo(context.Background(), VoucherReceipt)
	require.NoError(t, err)
	assert.Equal(t, preview+1, after)

	// numbering is independent per type
	paymentNo, err := svc.NextNo(context.Background(), VoucherPayment)
	require.NoError(t, err)
	assert.Equal(t, int64(1), paymentNo)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	cases := []CreateInput{
		{AccountID: uuid.New(), TotalAmount: 10, Lines: []LineInput{{AccountID: uuid.New(), Type: ledger.TransactionDebit, Amount: 10}}}, // missing type
		{Type: VoucherReceipt, TotalAmount: 10, Lines: []LineInput{{AccountID: uuid.New(), Type: ledger.TransactionDebit, Amount: 10}}},  // missing account
		{Type: VoucherReceipt, AccountID: uuid.New(), TotalAmount: 10},                                                                   // empty lines
		{Type: VoucherReceipt, AccountID: uuid.New(), TotalAmount: 10, Lines: []LineInput{{AccountID: uuid.New(), Amount: 10}}},          // line missing type
		{Type: VoucherReceipt, AccountID: uuid.New(), Lines: []LineInput{{AccountID: uuid.New(), Type: ledger.TransactionDebit, Amount: 10}}}, // zero total
	}
	for i, in := range cases {
		_, err := svc.Create(context.Background(), in)
		assert.True(t, shared.IsValidation(err), fmt.Sprintf("case %d", i))
	}
}

func TestCreateUnknownLineAccountRollsBack(t *testing.T) {
	repo := newFakeRepo()
	cashAcc := uuid.New()
	repo.balances[cashAcc] = 1000
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherPayment,
		AccountID:   cashAcc,
		TotalAmount: 100,
		Lines:       []LineInput{{AccountID: uuid.New(), Type: ledger.TransactionDebit, Amount: 100}},
	})
	assert.ErrorIs(t, err, acctshared.ErrAccountNotFound)
	assert.Equal(t, 1000.0, repo.balances[cashAcc])
	assert.Empty(t, repo.vouchers)
	assert.Empty(t, repo.entries)
}

func TestCreateRetriesOnDuplicateNumber(t *testing.T) {
	repo := newFakeRepo()
	cashAcc := uuid.New()
	lineAcc := uuid.New()
	repo.balances[cashAcc] = 0
	repo.balances[lineAcc] = 0
	repo.insertErrs = []error{acctshared.ErrDuplicateVoucherNo, nil}
	svc := NewService(repo, nil)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherReceipt,
		AccountID:   cashAcc,
		TotalAmount: 10,
		Lines:       []LineInput{{AccountID: lineAcc, Type: ledger.TransactionCredit, Amount: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.VoucherNo)
	assert.Len(t, repo.vouchers, 1)
}

func TestDeleteRestoresBalances(t *testing.T) {
	repo := newFakeRepo()
	lineAcc := uuid.New()
	cashAcc := uuid.New()
	repo.balances[lineAcc] = 500
	repo.balances[cashAcc] = 1000
	svc := NewService(repo, nil)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherPayment,
		AccountID:   cashAcc,
		TotalAmount: 100,
		Lines:       []LineInput{{AccountID: lineAcc, Type: ledger.TransactionDebit, Amount: 100}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), result.ID))
	assert.Equal(t, 500.0, repo.balances[lineAcc])
	assert.Equal(t, 1000.0, repo.balances[cashAcc])
	assert.Empty(t, repo.entries)
	assert.Empty(t, repo.vouchers)
}

func TestUpdateWithLinesReversesOldEffects(t *testing.T) {
	repo := newFakeRepo()
	oldAcc := uuid.New()
	newAcc := uuid.New()
	cashAcc := uuid.New()
	repo.balances[oldAcc] = 500
	repo.balances[newAcc] = 300
	repo.balances[cashAcc] = 1000
	svc := NewService(repo, nil)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherPayment,
		AccountID:   cashAcc,
		TotalAmount: 100,
		Lines:       []LineInput{{AccountID: oldAcc, Type: ledger.TransactionDebit, Amount: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, 400.0, repo.balances[oldAcc])
	require.Equal(t, 900.0, repo.balances[cashAcc])

	total := 40.0
	updated, err := svc.Update(context.Background(), result.ID, UpdateInput{
		TotalAmount: &total,
		Lines:       []LineInput{{AccountID: newAcc, Type: ledger.TransactionDebit, Amount: 40}},
	})
	require.NoError(t, err)

	// old line fully reversed, new lines applied against restored cash
	assert.Equal(t, 500.0, repo.balances[oldAcc])
	assert.Equal(t, 260.0, repo.balances[newAcc])
	assert.Equal(t, 960.0, repo.balances[cashAcc])
	require.Len(t, updated.Entries, 2)
	assert.Equal(t, 1000.0, updated.Entries[1].PreviousBalance)
}

func TestUpdateWithoutLinesKeepsEntries(t *testing.T) {
	repo := newFakeRepo()
	lineAcc := uuid.New()
	cashAcc := uuid.New()
	repo.balances[lineAcc] = 500
	repo.balances[cashAcc] = 1000
	svc := NewService(repo, nil)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherPayment,
		AccountID:   cashAcc,
		TotalAmount: 100,
		Description: "old",
		Lines:       []LineInput{{AccountID: lineAcc, Type: ledger.TransactionDebit, Amount: 100}},
	})
	require.NoError(t, err)

	desc := "corrected narration"
	updated, err := svc.Update(context.Background(), result.ID, UpdateInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "corrected narration", updated.Description)
	assert.Equal(t, VoucherPayment, updated.Type)
	assert.Len(t, updated.Entries, 2)
	assert.Equal(t, 400.0, repo.balances[lineAcc])
	assert.Equal(t, 900.0, repo.balances[cashAcc])
}

func TestUpdateRejectsEmptyLines(t *testing.T) {
	repo := newFakeRepo()
	lineAcc := uuid.New()
	cashAcc := uuid.New()
	repo.balances[lineAcc] = 500
	repo.balances[cashAcc] = 1000
	svc := NewService(repo, nil)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherPayment,
		AccountID:   cashAcc,
		TotalAmount: 100,
		Lines:       []LineInput{{AccountID: lineAcc, Type: ledger.TransactionDebit, Amount: 100}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), result.ID, UpdateInput{Lines: []LineInput{}})
	assert.True(t, shared.IsValidation(err))

	// Nothing was reversed or dropped.
	assert.Len(t, repo.entries, 2)
	assert.Equal(t, 400.0, repo.balances[lineAcc])
	assert.Equal(t, 900.0, repo.balances[cashAcc])
}

func TestUpdateAmountRequiresLines(t *testing.T) {
	repo := newFakeRepo()
	lineAcc := uuid.New()
	cashAcc := uuid.New()
	repo.balances[lineAcc] = 500
	repo.balances[cashAcc] = 1000
	svc := NewService(repo, nil)

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherPayment,
		AccountID:   cashAcc,
		TotalAmount: 100,
		Lines:       []LineInput{{AccountID: lineAcc, Type: ledger.TransactionDebit, Amount: 100}},
	})
	require.NoError(t, err)

	amount := 250.0
	_, err = svc.Update(context.Background(), result.ID, UpdateInput{TotalAmount: &amount})
	assert.True(t, shared.IsValidation(err))

	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Update(context.Background(), result.ID, UpdateInput{VoucherDate: &date})
	assert.True(t, shared.IsValidation(err))

	// The stored voucher still matches its postings.
	assert.Equal(t, 100.0, repo.vouchers[result.ID].TotalAmount)
	assert.Equal(t, 900.0, repo.balances[cashAcc])
}

func TestDeleteUnknownVoucher(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, acctshared.ErrVoucherNotFound)
}

func TestCreateDefaultsVoucherDate(t *testing.T) {
	repo := newFakeRepo()
	cashAcc := uuid.New()
	lineAcc := uuid.New()
	repo.balances[cashAcc] = 0
	repo.balances[lineAcc] = 0
	fixed := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, nil).WithNow(func() time.Time { return fixed })

	result, err := svc.Create(context.Background(), CreateInput{
		Type:        VoucherReceipt,
		AccountID:   cashAcc,
		TotalAmount: 5,
		Lines:       []LineInput{{AccountID: lineAcc, Type: ledger.TransactionCredit, Amount: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, result.VoucherDate)
	assert.Equal(t, fixed, result.Entries[0].EntryDate)
}
