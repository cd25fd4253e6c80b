package groups

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/codes"
	acctshared "github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// codeRetries bounds how often a collided generated code is recomputed
// before giving up with Conflict. Collisions only happen when two
// creations race on the same parent.
const codeRetries = 3

// CacheInvalidator bumps the hierarchy report cache after mutations.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// CreateInput groups fields accepted when creating an account group.
type CreateInput struct {
	Name        string
	Type        GroupType
	ParentID    *uuid.UUID
	Description string
}

// UpdateInput carries optional group mutations; nil fields keep
// previous values.
type UpdateInput struct {
	Name        *string
	Type        *GroupType
	ParentID    *uuid.UUID
	Description *string
}

// Service implements account-group business rules.
type Service struct {
	repo  Repository
	cache CacheInvalidator
}

// NewService builds a Service instance.
func NewService(repo Repository, cache CacheInvalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns every account group ordered by code.
func (s *Service) List(ctx context.Context) ([]AccountGroup, error) {
	return s.repo.List(ctx)
}

// Get returns one account group by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (AccountGroup, error) {
	return s.repo.Get(ctx, id)
}

// NextCode computes the code the next group under parentID would
// receive. Root groups number "1", "2", ... and children
// "<parentCode>.<n>"; deletions never renumber surviving siblings.
func (s *Service) NextCode(ctx context.Context, parentID *uuid.UUID) (string, error) {
	if parentID == nil {
		roots, err := s.repo.ListRootCodes(ctx)
		if err != nil {
			return "", err
		}
		return codes.NextRoot(roots), nil
	}
	parent, err := s.repo.Get(ctx, *parentID)
	if err != nil {
		return "", err
	}
	siblings, err := s.repo.ListChildCodes(ctx, *parentID)
	if err != nil {
		return "", err
	}
	return codes.Child(parent.Code, codes.NextSuffix(siblings)), nil
}

// Create assigns the next hierarchical code and inserts the group.
// A storage-level unique constraint on (parent_id, code) catches
// concurrent creations; the code is recomputed on collision.
func (s *Service) Create(ctx context.Context, in CreateInput) (AccountGroup, error) {
	if in.Name == "" {
		return AccountGroup{}, shared.NewValidationError("name")
	}
	if !in.Type.Valid() {
		return AccountGroup{}, shared.NewValidationError("type")
	}
	var lastErr error
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := s.NextCode(ctx, in.ParentID)
		if err != nil {
			return AccountGroup{}, err
		}
		created, err := s.repo.Insert(ctx, AccountGroup{
			Name:        in.Name,
			Type:        in.Type,
			ParentID:    in.ParentID,
			Code:        code,
			Description: in.Description,
		})
		if err == nil {
			s.bump(ctx)
			return created, nil
		}
		if !errors.Is(err, acctshared.ErrDuplicateCode) {
			return AccountGroup{}, err
		}
		lastErr = err
	}
	return AccountGroup{}, lastErr
}

// CreateBulk creates the given groups in order, assigning sequential
// codes. Creation stops at the first failure.
func (s *Service) CreateBulk(ctx context.Context, inputs []CreateInput) ([]AccountGroup, error) {
	if len(inputs) == 0 {
		return nil, shared.NewValidationError("groups")
	}
	created := make([]AccountGroup, 0, len(inputs))
	for _, in := range inputs {
		group, err := s.Create(ctx, in)
		if err != nil {
			return created, err
		}
		created = append(created, group)
	}
	return created, nil
}

// Update applies the supplied mutations. The code is left untouched:
// renaming or moving a group never renumbers it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (AccountGroup, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return AccountGroup{}, err
	}
	if in.Name != nil {
		current.Name = *in.Name
	}
	if in.Type != nil {
		current.Type = *in.Type
	}
	if in.ParentID != nil {
		current.ParentID = in.ParentID
	}
	if in.Description != nil {
		current.Description = *in.Description
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return AccountGroup{}, err
	}
	s.bump(ctx)
	return updated, nil
}

// Delete removes a group. Deletion is blocked while the group still
// owns child groups or accounts so references stay valid.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	accounts, err := s.repo.CountAccounts(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 || accounts > 0 {
		return acctshared.ErrGroupNotEmpty
	}
	if err := s.repo.Delete(ctx, id); err != nil {
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
