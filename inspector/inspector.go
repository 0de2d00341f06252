package inspector

import (
	"context"

	"github.com/queuectl/queuectl"
	"github.com/queuectl/queuectl/job"
)

// Inspector wraps a store's read and replay surface.
type Inspector struct {
	observer queuectl.Observer
	replayer queuectl.Claimer
}

// New builds an Inspector over store, which must satisfy both
// queuectl.Observer and queuectl.Claimer.
func New(store interface {
	queuectl.Observer
	queuectl.Claimer
}) *Inspector {
	return &Inspector{observer: store, replayer: store}
}

// Get returns the job identified by id, or (nil, nil) if absent.
func (i *Inspector) Get(ctx context.Context, id string) (*job.Job, error) {
	return i.observer.Get(ctx, id)
}

// List returns up to limit jobs, optionally filtered by status.
func (i *Inspector) List(ctx context.Context, status job.Status, limit, offset int) ([]*job.Job, error) {
	return i.observer.List(ctx, status, limit, offset)
}

// Counts summarizes the number of jobs in each lifecycle state.
func (i *Inspector) Counts(ctx context.Context) (queuectl.Counts, error) {
	return i.observer.Counts(ctx)
}

// Retry moves a dead job back to pending, optionally resetting its
// retry budget to maxRetries. It returns queuectl.ErrNotFound or
// queuectl.ErrNotInDLQ as appropriate.
func (i *Inspector) Retry(ctx context.Context, id string, maxRetries *uint32) error {
	return i.replayer.Replay(ctx, id, maxRetries)
}
