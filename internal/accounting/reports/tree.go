package reports

import (
	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/accounts"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/groups"
)

// TreeNode is one node of the chart-of-accounts hierarchy report.
// Group nodes aggregate the balances of their direct accounts;
// account leaves always carry an empty children slice.
type TreeNode struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Code           string           `json:"code"`
	GroupID        *uuid.UUID       `json:"groupId"`
	AccountType    groups.GroupType `json:"accountType"`
	CurrentBalance float64          `json:"currentBalance"`
	Children       []TreeNode       `json:"children"`
}

// BuildTree assembles flat group and account records into the
// parent→children hierarchy. The source relation is a tree, so the
// recursion terminates; children are ordered child groups first, then
// the group's direct accounts.
func BuildTree(groupList []groups.AccountGroup, accountList []accounts.Account) []TreeNode {
	byParent := map[uuid.UUID][]groups.AccountGroup{}
	var roots []groups.AccountGroup
	for _, g := range groupList {
		if g.ParentID == nil {
			roots = append(roots, g)
			continue
		}
		byParent[*g.ParentID] = append(byParent[*g.ParentID], g)
	}
	byGroup := map[uuid.UUID][]accounts.Account{}
	for _, a := range accountList {
		byGroup[a.GroupID] = append(byGroup[a.GroupID], a)
	}

	var build func(list []groups.AccountGroup, parentID *uuid.UUID) []TreeNode
	build = func(list []groups.AccountGroup, parentID *uuid.UUID) []TreeNode {
		nodes := make([]TreeNode, 0, len(list))
		for _, g := range list {
			children := build(byParent[g.ID], &g.ID)
			var balance float64
			for _, a := range byGroup[g.ID] {
				balance += a.CurrentBalance
				children = append(children, TreeNode{
					ID:             a.ID,
					Name:           a.Name,
					Code:           a.Code,
					GroupID:        &g.ID,
					AccountType:    g.Type,
					CurrentBalance: a.CurrentBalance,
					Children:       []TreeNode{},
				})
			}
			nodes = append(nodes, TreeNode{
				ID:             g.ID,
				Name:           g.Name,
				Code:           g.Code,
				GroupID:        parentID,
				AccountType:    g.Type,
				CurrentBalance: balance,
				Children:       children,
			})
		}
		return nodes
	}
	return build(roots, nil)
}
