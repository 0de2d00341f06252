package worker_test

import (
	"context"
	"log/slog"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuectl/queuectl/config"
	"github.com/queuectl/queuectl/executor"
	"github.com/queuectl/queuectl/job"
	"github.com/queuectl/queuectl/worker"
)

type call struct {
	kind string
	id   string
}

type fakeStore struct {
	mu      sync.Mutex
	pending []*job.Job
	calls   []call
}

func newFakeStore(jobs ...*job.Job) *fakeStore {
	return &fakeStore{pending: jobs}
}

func (f *fakeStore) Claim(ctx context.Context) (*job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil, nil
	}
	j := f.pending[0]
	f.pending = f.pending[1:]
	f.calls = append(f.calls, call{"claim", j.Id})
	return j, nil
}

func (f *fakeStore) FinishSuccess(ctx context.Context, id string, exitCode int, stdout, stderr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{"success", id})
	return nil
}

func (f *fakeStore) FinishFailure(ctx context.Context, id string, exitCode int, execErr, stdout, stderr string, attemptsSoFar, maxRetries uint32, backoffBase int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{"failure", id})
	return nil
}

func (f *fakeStore) Replay(ctx context.Context, id string, maxRetries *uint32) error {
	return nil
}

func (f *fakeStore) history() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

type memConfigStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemConfigStore() *memConfigStore {
	return &memConfigStore{values: make(map[string]string)}
}

func (m *memConfigStore) GetConfig(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memConfigStore) SetConfig(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerCompletesSuccessfulJob(t *testing.T) {
	st := newFakeStore(&job.Job{Id: "a", Command: "true", MaxRetries: 3})
	cfg := config.New(newMemConfigStore())
	require.NoError(t, cfg.Set(context.Background(), config.KeyWorkerPollInterval, "1"))

	w := worker.New("w1", st, cfg, executor.New(), silentLogger())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	require.Eventually(t, func() bool {
		return len(st.history()) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	_ = w.Stop(time.Second)

	history := st.history()
	assert.Equal(t, "claim", history[0].kind)
	assert.Equal(t, "success", history[1].kind)
}

func TestWorkerRecordsFailure(t *testing.T) {
	st := newFakeStore(&job.Job{Id: "b", Command: "exit 1", MaxRetries: 3})
	cfg := config.New(newMemConfigStore())

	w := worker.New("w2", st, cfg, executor.New(), silentLogger())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	require.Eventually(t, func() bool {
		return len(st.history()) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	_ = w.Stop(time.Second)

	history := st.history()
	assert.Equal(t, "failure", history[1].kind)
}

func TestWorkerDoubleStartFails(t *testing.T) {
	st := newFakeStore()
	cfg := config.New(newMemConfigStore())
	w := worker.New("w3", st, cfg, executor.New(), silentLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	err := w.Start(ctx)
	assert.Error(t, err)
	_ = w.Stop(time.Second)
}

func TestWorkerDrainsMultipleJobsPerTick(t *testing.T) {
	st := newFakeStore(
		&job.Job{Id: "a", Command: "true", MaxRetries: 3},
		&job.Job{Id: "b", Command: "true", MaxRetries: 3},
		&job.Job{Id: "c", Command: "true", MaxRetries: 3},
	)
	cfg := config.New(newMemConfigStore())
	require.NoError(t, cfg.Set(context.Background(), config.KeyWorkerPollInterval, "60"))

	w := worker.New("w4", st, cfg, executor.New(), silentLogger())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	require.Eventually(t, func() bool {
		return len(st.history()) == 6
	}, time.Second, 5*time.Millisecond)

	cancel()
	_ = w.Stop(time.Second)
}
