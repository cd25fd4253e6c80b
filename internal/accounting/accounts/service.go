package accounts

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/codes"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/groups"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/ledger"
	acctshared "github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

const codeRetries = 3

// GroupGetter resolves the owning group during account creation.
type GroupGetter interface {
	Get(ctx context.Context, id uuid.UUID) (groups.AccountGroup, error)
}

// CacheInvalidator bumps the hierarchy report cache after mutations.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// CreateInput groups fields accepted when creating an account.
type CreateInput struct {
	Name           string
	GroupID        uuid.UUID
	OpeningBalance float64
	Description    string
}

// UpdateInput carries optional account mutations; nil fields keep
// previous values. Code, group and balances are not updatable.
type UpdateInput struct {
	Name        *string
	Description *string
}

// Service implements account business rules.
type Service struct {
	repo   Repository
	groups GroupGetter
	cache  CacheInvalidator
	now    func() time.Time
}

func NewService(repo Repository, groupGetter GroupGetter, cache CacheInvalidator) *Service {
	return &Service{repo: repo, groups: groupGetter, cache: cache, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns accounts, optionally restricted to one group.
func (s *Service) List(ctx context.Context, groupID *uuid.UUID) ([]Account, error) {
	return s.repo.List(ctx, groupID)
}

// Get returns one account by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.repo.Get(ctx, id)
}

// Create assigns the next code under the owning group and inserts the
// account. A non-zero opening balance also writes an opening ledger
// entry with a zero previous balance, in the same transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if in.Name == "" {
		return Account{}, shared.NewValidationError("name")
	}
	if in.GroupID == uuid.Nil {
		return Account{}, shared.NewValidationError("groupId")
	}
	group, err := s.groups.Get(ctx, in.GroupID)
	if err != nil {
		return Account{}, err
	}

	var lastErr error
	for attempt := 0; attempt < codeRetries; attempt++ {
		siblingCodes, err := s.repo.ListCodes(ctx, in.GroupID)
		if err != nil {
			return Account{}, err
		}
		code := codes.Child(group.Code, codes.NextSuffix(siblingCodes))

		var created Account
		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			created, err = tx.InsertAccount(ctx, Account{
				Name:           in.Name,
				GroupID:        in.GroupID,
				Code:           code,
				OpeningBalance: in.OpeningBalance,
				CurrentBalance: in.OpeningBalance,
				Description:    in.Description,
			})
			if err != nil {
				return err
			}
			if in.OpeningBalance == 0 {
				return nil
			}
			transactionType := ledger.TransactionCredit
			if in.OpeningBalance < 0 {
				transactionType = ledger.TransactionDebit
			}
			return tx.InsertOpeningEntry(ctx, created.ID, string(transactionType), math.Abs(in.OpeningBalance), s.now())
		})
		if err == nil {
			s.bump(ctx)
			return created, nil
		}
		if !errors.Is(err, acctshared.ErrDuplicateCode) {
			return Account{}, err
		}
		lastErr = err
	}
	return Account{}, lastErr
}

// Update changes name and description; omitted fields keep previous
// values. The code and balances never change through this path.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Account, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if in.Name != nil {
		current.Name = *in.Name
	}
	if in.Description != nil {
		current.Description = *in.Description
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Account{}, err
	}
	s.bump(ctx)
	return updated, nil
}

// Delete removes an account together with its standalone ledger
// entries. Accounts referenced by vouchers cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	refs, err := s.repo.CountVoucherRefs(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return acctshared.ErrAccountInUse
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteEntriesByAccount(ctx, id); err != nil {
			return err
		}
		return tx.DeleteAccount(ctx, id)
	})
	if err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}
