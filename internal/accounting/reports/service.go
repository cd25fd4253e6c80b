package reports

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/accounts"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/groups"
)

// GroupLister supplies the flat group records for tree assembly.
type GroupLister interface {
	List(ctx context.Context) ([]groups.AccountGroup, error)
}

// AccountLister supplies the flat account records for tree assembly.
type AccountLister interface {
	List(ctx context.Context, groupID *uuid.UUID) ([]accounts.Account, error)
}

// Service builds the hierarchy report, serving from the cache when
// possible. Concurrent rebuilds collapse into a single fetch.
type Service struct {
	logger   *slog.Logger
	groups   GroupLister
	accounts AccountLister
	cache    *Cache
	sf       singleflight.Group
}

func NewService(logger *slog.Logger, groupLister GroupLister, accountLister AccountLister, cache *Cache) *Service {
	return &Service{logger: logger, groups: groupLister, accounts: accountLister, cache: cache}
}

// Tree returns the chart-of-accounts hierarchy. Cache errors degrade
// to a direct rebuild rather than failing the report.
func (s *Service) Tree(ctx context.Context) ([]TreeNode, error) {
	if s.cache != nil {
		tree, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("hierarchy cache read failed", slog.Any("error", err))
		} else if ok {
			return tree, nil
		}
	}
	result, err, _ := s.sf.Do("tree", func() (any, error) {
		return s.rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]TreeNode), nil
}

func (s *Service) rebuild(ctx context.Context) ([]TreeNode, error) {
	groupList, err := s.groups.List(ctx)
	if err != nil {
		return nil, err
	}
	accountList, err := s.accounts.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	tree := BuildTree(groupList, accountList)
	if s.cache != nil {
		if err := s.cache.Set(ctx, tree); err != nil {
			s.logger.Warn("hierarchy cache write failed", slog.Any("error", err))
		}
	}
	return tree, nil
}
