package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/reports"
)

// TreeBuilder is the slice of the reports service the warmup needs.
type TreeBuilder interface {
	Tree(ctx context.Context) ([]reports.TreeNode, error)
}

// HierarchyWarmupJob rebuilds the hierarchy report so the first
// request after an invalidation does not pay the build cost.
type HierarchyWarmupJob struct {
	reports TreeBuilder
	logger  *slog.Logger
}

func NewHierarchyWarmupJob(builder TreeBuilder, logger *slog.Logger) *HierarchyWarmupJob {
	return &HierarchyWarmupJob{reports: builder, logger: logger}
}

// Handle processes TaskHierarchyWarmup tasks.
func (j *HierarchyWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	tree, err := j.reports.Tree(ctx)
	if err != nil {
		return err
	}
	j.logger.Info("hierarchy cache warmed", slog.Int("roots", len(tree)))
	return nil
}
