package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/queuectl/queuectl"
	"github.com/queuectl/queuectl/job"
)

// Get returns the job identified by id, or (nil, nil) if it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*job.Job, error) {
	var m jobModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m.toJob()
}

// List returns up to limit jobs ordered by created_at DESC, optionally
// filtered by status, starting at offset.
func (s *Store) List(ctx context.Context, status job.Status, limit, offset int) ([]*job.Job, error) {
	var models []jobModel
	q := s.db.NewSelect().Model(&models).Order("created_at DESC")
	if status != job.Unknown {
		q = q.Where("status = ?", status.String())
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	jobs := make([]*job.Job, 0, len(models))
	for i := range models {
		j, err := models[i].toJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// Counts returns the number of jobs in each lifecycle state.
func (s *Store) Counts(ctx context.Context) (queuectl.Counts, error) {
	type row struct {
		Status string `bun:"status"`
		N      int64  `bun:"n"`
	}
	var rows []row
	err := s.db.NewSelect().
		Model((*jobModel)(nil)).
		ColumnExpr("status, count(*) AS n").
		GroupExpr("status").
		Scan(ctx, &rows)
	if err != nil {
		return queuectl.Counts{}, err
	}
	var c queuectl.Counts
	for _, r := range rows {
		switch r.Status {
		case job.Pending.String():
			c.Pending = r.N
		case job.Processing.String():
			c.Processing = r.N
		case job.Completed.String():
			c.Completed = r.N
		case job.Failed.String():
			c.Failed = r.N
		case job.Dead.String():
			c.Dead = r.N
		}
	}
	return c, nil
}
