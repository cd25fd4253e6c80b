package groups

import (
	"time"

	"github.com/google/uuid"
)

// GroupType enumerates chart-of-accounts categories.
type GroupType string

const (
	GroupTypeAsset     GroupType = "ASSET"
	GroupTypeLiability GroupType = "LIABILITY"
	GroupTypeEquity    GroupType = "EQUITY"
	GroupTypeIncome    GroupType = "INCOME"
	GroupTypeExpense   GroupType = "EXPENSE"
)

// Valid reports whether t names a known chart-of-accounts category.
func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeAsset, GroupTypeLiability, GroupTypeEquity, GroupTypeIncome, GroupTypeExpense:
		return true
	}
	return false
}

// AccountGroup is a node in the chart-of-accounts hierarchy. Root
// groups have a nil ParentID and a plain integer code; child codes are
// "<parentCode>.<n>".
type AccountGroup struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Type        GroupType  `json:"type"`
	ParentID    *uuid.UUID `json:"parentId"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
