package accounts

import (
	"time"

	"github.com/google/uuid"
)

// Account is a postable leaf of the chart of accounts. Its code is
// generated under the owning group ("<groupCode>.<n>") and never
// reused after deletion.
type Account struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	GroupID        uuid.UUID `json:"groupId"`
	Code           string    `json:"code"`
	OpeningBalance float64   `json:"openingBalance"`
	CurrentBalance float64   `json:"currentBalance"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
