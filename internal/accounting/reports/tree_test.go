package reports

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/accounts"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/groups"
)

func TestBuildTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildTree(nil, nil))
}

func TestBuildTreeSingleRootWithAccounts(t *testing.T) {
	root := groups.AccountGroup{ID: uuid.New(), Name: "Assets", Type: groups.GroupTypeAsset, Code: "1"}
	checking := accounts.Account{ID: uuid.New(), Name: "Checking", GroupID: root.ID, Code: "1.1", CurrentBalance: 150}
	savings := accounts.Account{ID: uuid.New(), Name: "Savings", GroupID: root.ID, Code: "1.2", CurrentBalance: 50}

	tree := BuildTree([]groups.AccountGroup{root}, []accounts.Account{checking, savings})
	require.Len(t, tree, 1)

	node := tree[0]
	assert.Equal(t, root.ID, node.ID)
	assert.Nil(t, node.GroupID)
	assert.Equal(t, groups.GroupTypeAsset, node.AccountType)
	assert.Equal(t, 200.0, node.CurrentBalance)
	require.Len(t, node.Children, 2)
	for _, leaf := range node.Children {
		assert.Empty(t, leaf.Children)
		assert.NotNil(t, leaf.Children, "account leaves carry an empty slice, not null")
		require.NotNil(t, leaf.GroupID)
		assert.Equal(t, root.ID, *leaf.GroupID)
	}
}

func TestBuildTreeNestedGroups(t *testing.T) {
	root := groups.AccountGroup{ID: uuid.New(), Name: "Assets", Type: groups.GroupTypeAsset, Code: "1"}
	child := groups.AccountGroup{ID: uuid.New(), Name: "Bank", Type: groups.GroupTypeAsset, ParentID: &root.ID, Code: "1.1"}
	other := groups.AccountGroup{ID: uuid.New(), Name: "Income", Type: groups.GroupTypeIncome, Code: "2"}
	acc := accounts.Account{ID: uuid.New(), Name: "Checking", GroupID: child.ID, Code: "1.1.1", CurrentBalance: 75}

	tree := BuildTree([]groups.AccountGroup{root, child, other}, []accounts.Account{acc})
	require.Len(t, tree, 2)

	assets := tree[0]
	require.Len(t, assets.Children, 1)
	// only direct accounts count toward a group's balance
	assert.Equal(t, 0.0, assets.CurrentBalance)

	bank := assets.Children[0]
	assert.Equal(t, child.ID, bank.ID)
	assert.Equal(t, 75.0, bank.CurrentBalance)
	require.Len(t, bank.Children, 1)
	assert.Equal(t, acc.ID, bank.Children[0].ID)

	income := tree[1]
	assert.Equal(t, other.ID, income.ID)
	assert.Empty(t, income.Children)
}
