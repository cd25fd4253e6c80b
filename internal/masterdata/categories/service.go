package categories

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, category Category) (Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return Category{}, shared.NewValidationError("name")
	}
	return s.repo.Create(ctx, category)
}

func (s *Service) Update(ctx context.Context, id int64, category Category) (Category, error) {
	if strings.TrimSpace(category.Name) == "" && strings.TrimSpace(category.Description) == "" {
		return Category{}, shared.NewValidationError("name", "description")
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if category.Name == "" {
		category.Name = current.Name
	}
	if category.Description == "" {
		category.Description = current.Description
	}
	return s.repo.Update(ctx, id, category)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
