package store

import (
	"context"
	"time"

	"github.com/queuectl/queuectl/job"
)

// strandedRequeueDelay keeps a reconciled job from being immediately
// re-claimed in the same instant the supervisor that stranded it is
// still finishing its own startup.
const strandedRequeueDelay = 5 * time.Second

// ReconcileStranded moves every Processing job left behind by a worker
// process that died mid-execution back to Pending, or to Dead if its
// retry budget is already exhausted. Attempts is left untouched: Claim
// already incremented it durably before the worker died, so the
// stranded execution counts against the job's budget.
func (s *Store) ReconcileStranded(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	deadRes, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Dead.String()).
		Set("finished_at = ?", now).
		Set("next_run_at = NULL").
		Set("updated_at = ?", now).
		Where("status = ?", job.Processing.String()).
		Where("attempts >= max_retries").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	deadCount, err := deadRes.RowsAffected()
	if err != nil {
		return 0, err
	}

	pendingRes, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Pending.String()).
		Set("started_at = NULL").
		Set("next_run_at = ?", now.Add(strandedRequeueDelay)).
		Set("updated_at = ?", now).
		Where("status = ?", job.Processing.String()).
		Where("attempts < max_retries").
		Exec(ctx)
	if err != nil {
		return int(deadCount), err
	}
	pendingCount, err := pendingRes.RowsAffected()
	if err != nil {
		return int(deadCount), err
	}

	return int(deadCount + pendingCount), nil
}
