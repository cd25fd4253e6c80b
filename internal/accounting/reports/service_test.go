package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/accounts"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/groups"
)

type stubListers struct {
	groups      []groups.AccountGroup
	accounts    []accounts.Account
	groupCalls  int
	accessCalls int
}

func (s *stubListers) List(ctx context.Context) ([]groups.AccountGroup, error) {
	s.groupCalls++
	return s.groups, nil
}

func (s *stubListers) ListAccounts(ctx context.Context, groupID *uuid.UUID) ([]accounts.Account, error) {
	s.accessCalls++
	return s.accounts, nil
}

type accountListerFunc struct{ s *stubListers }

func (a accountListerFunc) List(ctx context.Context, groupID *uuid.UUID) ([]accounts.Account, error) {
	return a.s.ListAccounts(ctx, groupID)
}

func TestTreeServedFromCacheAfterFirstBuild(t *testing.T) {
	root := groups.AccountGroup{ID: uuid.New(), Name: "Assets", Type: groups.GroupTypeAsset, Code: "1"}
	stub := &stubListers{groups: []groups.AccountGroup{root}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, stub, accountListerFunc{stub}, newTestCache(t))

	first, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, stub.groupCalls)

	second, err := svc.Tree(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.groupCalls, "second read must hit the cache")
}

func TestTreeWithoutCache(t *testing.T) {
	stub := &stubListers{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, stub, accountListerFunc{stub}, nil)

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tree)
	assert.Equal(t, 1, stub.groupCalls)
}
