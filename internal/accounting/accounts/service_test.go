package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/groups"
	acctshared "github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

type openingEntry struct {
	accountID uuid.UUID
	txType    string
	amount    float64
}

type stubRepo struct {
	accounts    map[uuid.UUID]Account
	codes       map[uuid.UUID][]string
	voucherRefs int64
	insertErrs  []error
	attempt     int
	openings    []openingEntry
	entryWipes  []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{accounts: map[uuid.UUID]Account{}, codes: map[uuid.UUID][]string{}}
}

func (s *stubRepo) List(ctx context.Context, groupID *uuid.UUID) ([]Account, error) {
	var out []Account
	for _, a := range s.accounts {
		if groupID == nil || a.GroupID == *groupID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, acctshared.ErrAccountNotFound
	}
	return a, nil
}

func (s *stubRepo) ListCodes(ctx context.Context, groupID uuid.UUID) ([]string, error) {
	return s.codes[groupID], nil
}

func (s *stubRepo) Update(ctx context.Context, a Account) (Account, error) {
	s.accounts[a.ID] = a
	return a, nil
}

func (s *stubRepo) CountVoucherRefs(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.voucherRefs, nil
}

func (s *stubRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, s)
}

func (s *stubRepo) InsertAccount(ctx context.Context, a Account) (Account, error) {
	if s.attempt < len(s.insertErrs) {
		err := s.insertErrs[s.attempt]
		s.attempt++
		if err != nil {
			return Account{}, err
		}
	}
	a.ID = uuid.New()
	s.accounts[a.ID] = a
	s.codes[a.GroupID] = append(s.codes[a.GroupID], a.Code)
	return a, nil
}

func (s *stubRepo) InsertOpeningEntry(ctx context.Context, accountID uuid.UUID, txType string, amount float64, entryDate time.Time) error {
	s.openings = append(s.openings, openingEntry{accountID: accountID, txType: txType, amount: amount})
	return nil
}

func (s *stubRepo) DeleteEntriesByAccount(ctx context.Context, accountID uuid.UUID) error {
	s.entryWipes = append(s.entryWipes, accountID)
	return nil
}

func (s *stubRepo) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.accounts[id]; !ok {
		return acctshared.ErrAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

type stubGroups struct {
	groups map[uuid.UUID]groups.AccountGroup
}

func (s *stubGroups) Get(ctx context.Context, id uuid.UUID) (groups.AccountGroup, error) {
	g, ok := s.groups[id]
	if !ok {
		return groups.AccountGroup{}, acctshared.ErrGroupNotFound
	}
	return g, nil
}

func fixtures() (*stubRepo, *stubGroups, uuid.UUID) {
	repo := newStubRepo()
	groupID := uuid.New()
	getter := &stubGroups{groups: map[uuid.UUID]groups.AccountGroup{
		groupID: {ID: groupID, Name: "Bank", Type: groups.GroupTypeAsset, Code: "1.2"},
	}}
	return repo, getter, groupID
}

func TestCreateAssignsCodeUnderGroup(t *testing.T) {
	repo, getter, groupID := fixtures()
	repo.codes[groupID] = []string{"1.2.1"}
	svc := NewService(repo, getter, nil)

	account, err := svc.Create(context.Background(), CreateInput{Name: "Checking", GroupID: groupID})
	require.NoError(t, err)
	assert.Equal(t, "1.2.2", account.Code)
	assert.Equal(t, 0.0, account.CurrentBalance)
	assert.Empty(t, repo.openings)
}

func TestCreateWithOpeningBalance(t *testing.T) {
	repo, getter, groupID := fixtures()
	svc := NewService(repo, getter, nil)

	account, err := svc.Create(context.Background(), CreateInput{
		Name:           "Checking",
		GroupID:        groupID,
		OpeningBalance: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, account.CurrentBalance)
	require.Len(t, repo.openings, 1)
	assert.Equal(t, account.ID, repo.openings[0].accountID)
	assert.Equal(t, "CREDIT", repo.openings[0].txType)
	assert.Equal(t, 500.0, repo.openings[0].amount)
}

func TestCreateWithNegativeOpeningBalance(t *testing.T) {
	repo, getter, groupID := fixtures()
	svc := NewService(repo, getter, nil)

	account, err := svc.Create(context.Background(), CreateInput{
		Name:           "Overdraft",
		GroupID:        groupID,
		OpeningBalance: -200,
	})
	require.NoError(t, err)
	assert.Equal(t, -200.0, account.CurrentBalance)
	require.Len(t, repo.openings, 1)
	assert.Equal(t, "DEBIT", repo.openings[0].txType)
	assert.Equal(t, 200.0, repo.openings[0].amount)
}

func TestCreateUnknownGroup(t *testing.T) {
	repo, getter, _ := fixtures()
	svc := NewService(repo, getter, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "Checking", GroupID: uuid.New()})
	assert.ErrorIs(t, err, acctshared.ErrGroupNotFound)
}

func TestCreateRetriesOnDuplicateCode(t *testing.T) {
	repo, getter, groupID := fixtures()
	repo.insertErrs = []error{acctshared.ErrDuplicateCode, nil}
	svc := NewService(repo, getter, nil)

	account, err := svc.Create(context.Background(), CreateInput{Name: "Checking", GroupID: groupID})
	require.NoError(t, err)
	assert.Equal(t, "1.2.1", account.Code)
}

func TestUpdateKeepsPreviousValues(t *testing.T) {
	repo, getter, groupID := fixtures()
	existing := Account{ID: uuid.New(), Name: "Checking", GroupID: groupID, Code: "1.2.1", Description: "main"}
	repo.accounts[existing.ID] = existing
	svc := NewService(repo, getter, nil)

	name := "Primary Checking"
	updated, err := svc.Update(context.Background(), existing.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Primary Checking", updated.Name)
	assert.Equal(t, "main", updated.Description)
	assert.Equal(t, "1.2.1", updated.Code)
}

func TestDeleteBlockedWhenReferenced(t *testing.T) {
	repo, getter, groupID := fixtures()
	existing := Account{ID: uuid.New(), Name: "Checking", GroupID: groupID, Code: "1.2.1"}
	repo.accounts[existing.ID] = existing
	repo.voucherRefs = 1
	svc := NewService(repo, getter, nil)

	err := svc.Delete(context.Background(), existing.ID)
	assert.ErrorIs(t, err, acctshared.ErrAccountInUse)
	assert.Contains(t, repo.accounts, existing.ID)
}

func TestDeleteRemovesAccountAndEntries(t *testing.T) {
	repo, getter, groupID := fixtures()
	existing := Account{ID: uuid.New(), Name: "Checking", GroupID: groupID, Code: "1.2.1"}
	repo.accounts[existing.ID] = existing
	svc := NewService(repo, getter, nil)

	require.NoError(t, svc.Delete(context.Background(), existing.ID))
	assert.Equal(t, []uuid.UUID{existing.ID}, repo.entryWipes)
	assert.NotContains(t, repo.accounts, existing.ID)
}

func TestCreateValidation(t *testing.T) {
	repo, getter, groupID := fixtures()
	svc := NewService(repo, getter, nil)

	_, err := svc.Create(context.Background(), CreateInput{GroupID: groupID})
	assert.True(t, shared.IsValidation(err))

	_, err = svc.Create(context.Background(), CreateInput{Name: "Checking"})
	assert.True(t, shared.IsValidation(err))
}
