package queuectl

import (
	"context"
	"time"

	"github.com/queuectl/queuectl/job"
)

// Enqueuer defines the write-side entry point of the queue.
type Enqueuer interface {
	// Insert persists a new job in the Pending state.
	//
	// If a job with the same Id already exists, Insert returns
	// ErrDuplicateID and the store is left unmodified.
	Insert(ctx context.Context, j *job.Job) error
}

// Claimer defines the atomic claim protocol and the terminal and retry
// transitions that follow execution.
//
// Implementations must guarantee that no two callers ever observe the
// same job as Processing as a result of concurrent Claim calls, even
// under crash or restart (see package store for the SQL realization).
type Claimer interface {
	// Claim selects one eligible Pending job (next_run_at in the past
	// or unset, highest priority first, ties broken by earliest
	// created_at), atomically transitions it to Processing, and
	// returns the updated snapshot. Claim returns (nil, nil) if no
	// job is currently eligible.
	Claim(ctx context.Context) (*job.Job, error)

	// FinishSuccess transitions a Processing job to Completed,
	// recording its exit code and captured output.
	FinishSuccess(ctx context.Context, id string, exitCode int, stdout, stderr string) error

	// FinishFailure records a failed execution attempt. If
	// attemptsSoFar >= maxRetries the job transitions to Dead;
	// otherwise it returns to Pending with next_run_at set to
	// now + backoffBase^attemptsSoFar seconds.
	FinishFailure(ctx context.Context, id string, exitCode int, execErr, stdout, stderr string, attemptsSoFar, maxRetries uint32, backoffBase int64) error

	// Replay moves a Dead job back to Pending, resetting Attempts to
	// zero and clearing NextRunAt. If maxRetries is non-nil, it
	// overrides the job's retry budget. Replay returns ErrNotFound or
	// ErrNotInDLQ as appropriate.
	Replay(ctx context.Context, id string, maxRetries *uint32) error
}

// Counts summarizes the number of jobs in each lifecycle state.
type Counts struct {
	Pending    int64
	Processing int64
	Completed  int64
	Failed     int64
	Dead       int64
}

// Observer provides read-only access to job state.
type Observer interface {
	// Get returns the job identified by id, or (nil, nil) if absent.
	Get(ctx context.Context, id string) (*job.Job, error)

	// List returns up to limit jobs (ordered by created_at DESC),
	// optionally filtered by status. A zero status means no filter;
	// a non-positive limit means no limit.
	List(ctx context.Context, status job.Status, limit, offset int) ([]*job.Job, error)

	// Counts returns the number of jobs in each state.
	Counts(ctx context.Context) (Counts, error)
}

// ConfigStore provides durable key/value configuration storage. It does
// not apply defaults or key normalization; see package config for that.
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (string, bool, error)
	SetConfig(ctx context.Context, key, value string) error
}

// Store is the full persistence surface a worker pool and its clients
// depend on.
type Store interface {
	Enqueuer
	Claimer
	Observer
	ConfigStore
}

// Reconciler recovers jobs left in Processing by a worker process that
// died without recording an outcome ("stranded" jobs). It is exercised
// once by the supervisor at startup, before any worker is spawned, and
// is not part of the normal claim/finish state machine.
type Reconciler interface {
	// ReconcileStranded moves every Processing job back to Pending (if
	// it still has retry budget) or to Dead (if not), and returns how
	// many jobs it touched.
	ReconcileStranded(ctx context.Context) (int, error)
}

// Backoff computes the deterministic integer-second retry delay for the
// given attempt count, as backoffBase^attempt. No jitter is applied:
// test suites and operators rely on this being exactly reproducible.
func Backoff(backoffBase int64, attempt uint32) time.Duration {
	if backoffBase <= 0 {
		backoffBase = 1
	}
	delay := int64(1)
	for i := uint32(0); i < attempt; i++ {
		delay *= backoffBase
	}
	return time.Duration(delay) * time.Second
}
