package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/queuectl/queuectl"
	"github.com/queuectl/queuectl/job"
)

// Store is a bun/SQLite-backed implementation of queuectl.Store.
//
// A Store is safe for concurrent use; SQLite's own single-writer
// semantics (enforced here by a one-connection pool, see Open) are what
// actually serialize writers, not any lock held in this struct.
type Store struct {
	db *bun.DB
}

// New wraps an already-opened, already-initialized *bun.DB.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

func isAffected(res sql.Result) bool {
	rows, err := res.RowsAffected()
	if err != nil {
		return true
	}
	return rows != 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Insert persists a new job in the Pending state.
func (s *Store) Insert(ctx context.Context, j *job.Job) error {
	model := fromJob(j)
	_, err := s.db.NewInsert().Model(model).Exec(ctx)
	if isUniqueViolation(err) {
		return queuectl.ErrDuplicateID
	}
	return err
}

// Claim selects and atomically leases the single best-eligible pending
// job: status = pending, next_run_at unset or in the past, ordered by
// priority DESC then created_at ASC. See package doc for the locking
// discipline this relies on.
func (s *Store) Claim(ctx context.Context) (*job.Job, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if isBusy(err) {
			return nil, nil
		}
		return nil, err
	}
	defer tx.Rollback()

	var candidate jobModel
	err = tx.NewSelect().
		Model(&candidate).
		Column("id").
		Where("status = ?", job.Pending.String()).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereOr("next_run_at IS NULL").WhereOr("next_run_at <= ?", now)
		}).
		Order("priority DESC", "created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if isBusy(err) {
			return nil, nil
		}
		return nil, err
	}

	res, err := tx.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Processing.String()).
		Set("attempts = attempts + 1").
		Set("started_at = COALESCE(started_at, ?)", now).
		Set("updated_at = ?", now).
		Where("id = ?", candidate.Id).
		Where("status = ?", job.Pending.String()).
		Exec(ctx)
	if err != nil {
		if isBusy(err) {
			return nil, nil
		}
		return nil, err
	}
	if !isAffected(res) {
		// Lost the race to another writer between select and update.
		return nil, nil
	}

	var claimed jobModel
	if err := tx.NewSelect().Model(&claimed).Where("id = ?", candidate.Id).Scan(ctx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return claimed.toJob()
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// FinishSuccess transitions a Processing job to Completed.
func (s *Store) FinishSuccess(ctx context.Context, id string, exitCode int, stdout, stderr string) error {
	now := time.Now().UTC()
	_, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Completed.String()).
		Set("result_code = ?", exitCode).
		Set("finished_at = ?", now).
		Set("updated_at = ?", now).
		Set("stdout = ?", truncate(stdout, truncatedOutputBytes)).
		Set("stderr = ?", truncate(stderr, truncatedOutputBytes)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// FinishFailure records a failed attempt, routing the job to Dead if
// its retry budget is exhausted or back to Pending with a backoff delay
// otherwise. The exponent uses the post-increment attempt count, so the
// first retry delay is backoffBase^1.
func (s *Store) FinishFailure(ctx context.Context, id string, exitCode int, execErr, stdout, stderr string, attemptsSoFar, maxRetries uint32, backoffBase int64) error {
	now := time.Now().UTC()
	truncatedErr := truncate(execErr, truncatedErrorBytes)
	truncatedOut := truncate(stdout, truncatedOutputBytes)
	truncatedErrOut := truncate(stderr, truncatedOutputBytes)

	q := s.db.NewUpdate().Model((*jobModel)(nil)).
		Set("result_code = ?", exitCode).
		Set("last_error = ?", truncatedErr).
		Set("updated_at = ?", now).
		Set("stdout = ?", truncatedOut).
		Set("stderr = ?", truncatedErrOut).
		Where("id = ?", id)

	if attemptsSoFar >= maxRetries {
		q = q.Set("status = ?", job.Dead.String()).
			Set("finished_at = ?", now).
			Set("next_run_at = NULL")
	} else {
		delay := queuectl.Backoff(backoffBase, attemptsSoFar)
		nextRun := now.Add(delay)
		q = q.Set("status = ?", job.Pending.String()).
			Set("next_run_at = ?", nextRun)
	}

	_, err := q.Exec(ctx)
	return err
}

// Replay moves a Dead job back to Pending, resetting its attempt count.
func (s *Store) Replay(ctx context.Context, id string, maxRetries *uint32) error {
	var current jobModel
	err := s.db.NewSelect().Model(&current).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return queuectl.ErrNotFound
		}
		return err
	}
	if current.Status != job.Dead.String() {
		return queuectl.ErrNotInDLQ
	}

	q := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Pending.String()).
		Set("attempts = 0").
		Set("next_run_at = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)
	if maxRetries != nil {
		q = q.Set("max_retries = ?", *maxRetries)
	}
	_, err = q.Exec(ctx)
	return err
}

var (
	_ queuectl.Store      = (*Store)(nil)
	_ queuectl.Reconciler = (*Store)(nil)
)
