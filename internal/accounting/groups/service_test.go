package groups

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acctshared "github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

type stubRepo struct {
	groups        map[uuid.UUID]AccountGroup
	rootCodes     []string
	childCodes    map[uuid.UUID][]string
	childCount    int
	accountCount  int
	insertErrs    []error
	updateErr     error
	inserted      []AccountGroup
	deleted       []uuid.UUID
	updated       []AccountGroup
	insertAttempt int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		groups:     map[uuid.UUID]AccountGroup{},
		childCodes: map[uuid.UUID][]string{},
	}
}

func (s *stubRepo) List(ctx context.Context) ([]AccountGroup, error) {
	out := make([]AccountGroup, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, id uuid.UUID) (AccountGroup, error) {
	g, ok := s.groups[id]
	if !ok {
		return AccountGroup{}, acctshared.ErrGroupNotFound
	}
	return g, nil
}

func (s *stubRepo) ListRootCodes(ctx context.Context) ([]string, error) {
	return s.rootCodes, nil
}

func (s *stubRepo) ListChildCodes(ctx context.Context, parentID uuid.UUID) ([]string, error) {
	return s.childCodes[parentID], nil
}

func (s *stubRepo) Insert(ctx context.Context, g AccountGroup) (AccountGroup, error) {
	if s.insertAttempt < len(s.insertErrs) {
		err := s.insertErrs[s.insertAttempt]
		s.insertAttempt++
		if err != nil {
			return AccountGroup{}, err
		}
	}
	g.ID = uuid.New()
	s.inserted = append(s.inserted, g)
	s.groups[g.ID] = g
	return g, nil
}

func (s *stubRepo) Update(ctx context.Context, g AccountGroup) (AccountGroup, error) {
	if s.updateErr != nil {
		return AccountGroup{}, s.updateErr
	}
	s.updated = append(s.updated, g)
	s.groups[g.ID] = g
	return g, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.groups, id)
	return nil
}

func (s *stubRepo) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	return s.childCount, nil
}

func (s *stubRepo) CountAccounts(ctx context.Context, id uuid.UUID) (int, error) {
	return s.accountCount, nil
}

type stubBumper struct{ count int }

func (b *stubBumper) Bump(ctx context.Context) error {
	b.count++
	return nil
}

func TestCreateAssignsRootCode(t *testing.T) {
	repo := newStubRepo()
	repo.rootCodes = []string{"1", "2"}
	bumper := &stubBumper{}
	svc := NewService(repo, bumper)

	group, err := svc.Create(context.Background(), CreateInput{Name: "Assets", Type: GroupTypeAsset})
	require.NoError(t, err)
	assert.Equal(t, "3", group.Code)
	assert.Equal(t, 1, bumper.count)
}

func TestCreateAssignsChildCode(t *testing.T) {
	repo := newStubRepo()
	parent := AccountGroup{ID: uuid.New(), Name: "Assets", Type: GroupTypeAsset, Code: "1"}
	repo.groups[parent.ID] = parent
	repo.childCodes[parent.ID] = []string{"1.1", "1.3"}
	svc := NewService(repo, nil)

	group, err := svc.Create(context.Background(), CreateInput{
		Name:     "Bank",
		Type:     GroupTypeAsset,
		ParentID: &parent.ID,
	})
	require.NoError(t, err)
	// suffix continues past the hole left by a deleted sibling
	assert.Equal(t, "1.4", group.Code)
}

func TestCreateChildOfMissingParent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)
	missing := uuid.New()

	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "Bank",
		Type:     GroupTypeAsset,
		ParentID: &missing,
	})
	assert.ErrorIs(t, err, acctshared.ErrGroupNotFound)
}

func TestCreateRetriesOnDuplicateCode(t *testing.T) {
	repo := newStubRepo()
	repo.insertErrs = []error{acctshared.ErrDuplicateCode, nil}
	svc := NewService(repo, nil)

	group, err := svc.Create(context.Background(), CreateInput{Name: "Assets", Type: GroupTypeAsset})
	require.NoError(t, err)
	assert.Equal(t, "1", group.Code)
	assert.Len(t, repo.inserted, 1)
}

func TestCreateGivesUpAfterRetries(t *testing.T) {
	repo := newStubRepo()
	repo.insertErrs = []error{acctshared.ErrDuplicateCode, acctshared.ErrDuplicateCode, acctshared.ErrDuplicateCode}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "Assets", Type: GroupTypeAsset})
	assert.ErrorIs(t, err, acctshared.ErrDuplicateCode)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newStubRepo(), nil)

	_, err := svc.Create(context.Background(), CreateInput{Type: GroupTypeAsset})
	assert.True(t, shared.IsValidation(err))

	_, err = svc.Create(context.Background(), CreateInput{Name: "Assets", Type: "WEIRD"})
	assert.True(t, shared.IsValidation(err))
}

func TestCreateBulkStopsAtFirstFailure(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)

	created, err := svc.CreateBulk(context.Background(), []CreateInput{
		{Name: "Assets", Type: GroupTypeAsset},
		{Name: "", Type: GroupTypeIncome},
		{Name: "Expenses", Type: GroupTypeExpense},
	})
	assert.True(t, shared.IsValidation(err))
	assert.Len(t, created, 1)
}

func TestUpdateKeepsPreviousValues(t *testing.T) {
	repo := newStubRepo()
	existing := AccountGroup{ID: uuid.New(), Name: "Assets", Type: GroupTypeAsset, Code: "1", Description: "fixed"}
	repo.groups[existing.ID] = existing
	svc := NewService(repo, nil)

	name := "Current Assets"
	updated, err := svc.Update(context.Background(), existing.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Current Assets", updated.Name)
	assert.Equal(t, GroupTypeAsset, updated.Type)
	assert.Equal(t, "1", updated.Code)
	assert.Equal(t, "fixed", updated.Description)
}

func TestUpdateReparentCodeCollisionIsConflict(t *testing.T) {
	repo := newStubRepo()
	existing := AccountGroup{ID: uuid.New(), Name: "Receivables", Type: GroupTypeAsset, Code: "1.2"}
	parent := AccountGroup{ID: uuid.New(), Name: "Current Assets", Type: GroupTypeAsset, Code: "1.1"}
	repo.groups[existing.ID] = existing
	repo.groups[parent.ID] = parent
	repo.updateErr = acctshared.ErrDuplicateCode
	svc := NewService(repo, nil)

	parentID := parent.ID
	_, err := svc.Update(context.Background(), existing.ID, UpdateInput{ParentID: &parentID})
	require.Error(t, err)
	assert.ErrorIs(t, err, acctshared.ErrDuplicateCode)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeleteBlockedWhenNotEmpty(t *testing.T) {
	repo := newStubRepo()
	existing := AccountGroup{ID: uuid.New(), Name: "Assets", Type: GroupTypeAsset, Code: "1"}
	repo.groups[existing.ID] = existing
	repo.accountCount = 2
	svc := NewService(repo, nil)

	err := svc.Delete(context.Background(), existing.ID)
	assert.ErrorIs(t, err, acctshared.ErrGroupNotEmpty)
	assert.True(t, errors.Is(err, shared.ErrConflict))
	assert.Empty(t, repo.deleted)
}

func TestDeleteEmptyGroup(t *testing.T) {
	repo := newStubRepo()
	existing := AccountGroup{ID: uuid.New(), Name: "Assets", Type: GroupTypeAsset, Code: "1"}
	repo.groups[existing.ID] = existing
	bumper := &stubBumper{}
	svc := NewService(repo, bumper)

	require.NoError(t, svc.Delete(context.Background(), existing.ID))
	assert.Equal(t, []uuid.UUID{existing.ID}, repo.deleted)
	assert.Equal(t, 1, bumper.count)
}
