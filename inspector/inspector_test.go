package inspector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuectl/queuectl"
	"github.com/queuectl/queuectl/inspector"
	"github.com/queuectl/queuectl/job"
)

type fakeStore struct {
	jobs        map[string]*job.Job
	replayCalls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[string]*job.Job)}
}

func (f *fakeStore) Get(ctx context.Context, id string) (*job.Job, error) {
	return f.jobs[id], nil
}

func (f *fakeStore) List(ctx context.Context, status job.Status, limit, offset int) ([]*job.Job, error) {
	var out []*job.Job
	for _, j := range f.jobs {
		if status != job.Unknown && j.Status != status {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeStore) Counts(ctx context.Context) (queuectl.Counts, error) {
	var c queuectl.Counts
	for _, j := range f.jobs {
		switch j.Status {
		case job.Pending:
			c.Pending++
		case job.Dead:
			c.Dead++
		}
	}
	return c, nil
}

func (f *fakeStore) Claim(ctx context.Context) (*job.Job, error) { return nil, nil }

func (f *fakeStore) FinishSuccess(ctx context.Context, id string, exitCode int, stdout, stderr string) error {
	return nil
}

func (f *fakeStore) FinishFailure(ctx context.Context, id string, exitCode int, execErr, stdout, stderr string, attemptsSoFar, maxRetries uint32, backoffBase int64) error {
	return nil
}

func (f *fakeStore) Replay(ctx context.Context, id string, maxRetries *uint32) error {
	f.replayCalls = append(f.replayCalls, id)
	j, ok := f.jobs[id]
	if !ok {
		return queuectl.ErrNotFound
	}
	if j.Status != job.Dead {
		return queuectl.ErrNotInDLQ
	}
	j.Status = job.Pending
	return nil
}

func TestGetReturnsJob(t *testing.T) {
	store := newFakeStore()
	store.jobs["a"] = &job.Job{Id: "a", Status: job.Pending}
	insp := inspector.New(store)

	j, err := insp.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", j.Id)
}

func TestCountsSummarizesStatuses(t *testing.T) {
	store := newFakeStore()
	store.jobs["a"] = &job.Job{Id: "a", Status: job.Pending}
	store.jobs["b"] = &job.Job{Id: "b", Status: job.Dead}
	insp := inspector.New(store)

	counts, err := insp.Counts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Pending)
	assert.EqualValues(t, 1, counts.Dead)
}

func TestRetryReplaysDeadJob(t *testing.T) {
	store := newFakeStore()
	store.jobs["a"] = &job.Job{Id: "a", Status: job.Dead}
	insp := inspector.New(store)

	require.NoError(t, insp.Retry(context.Background(), "a", nil))
	assert.Equal(t, job.Pending, store.jobs["a"].Status)
}

func TestRetryNotFound(t *testing.T) {
	store := newFakeStore()
	insp := inspector.New(store)
	err := insp.Retry(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, queuectl.ErrNotFound)
}
