package brands

import (
	"context"
	"strings"

	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Brand, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Brand, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, brand Brand) (Brand, error) {
	if strings.TrimSpace(brand.Name) == "" {
		return Brand{}, shared.NewValidationError("name")
	}
	return s.repo.Create(ctx, brand)
}

func (s *Service) Update(ctx context.Context, id int64, brand Brand) (Brand, error) {
	if strings.TrimSpace(brand.Name) == "" && strings.TrimSpace(brand.Description) == "" {
		return Brand{}, shared.NewValidationError("name", "description")
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Brand{}, err
	}
	if brand.Name == "" {
		brand.Name = current.Name
	}
	if brand.Description == "" {
		brand.Description = current.Description
	}
	return s.repo.Update(ctx, id, brand)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
