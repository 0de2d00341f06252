package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/queuectl/queuectl"
	"github.com/queuectl/queuectl/config"
	"github.com/queuectl/queuectl/executor"
	"github.com/queuectl/queuectl/internal"
	"github.com/queuectl/queuectl/job"
)

// fallbackPollInterval is used when the stored poll interval cannot be
// read or parsed, so a worker never spins on a broken config row.
const fallbackPollInterval = time.Second

// Worker claims one job at a time from a queuectl.Claimer, runs it through
// an executor.Executor, and records the outcome. Each Worker is meant
// to run inside its own OS process; it holds no state shared with any
// sibling worker.
type Worker struct {
	queuectl.LifecycleBase

	id     string
	store  queuectl.Claimer
	cfg    *config.Config
	exec   *executor.Executor
	logger *slog.Logger
	task   internal.TimerTask
}

// New builds a Worker identified by id, claiming work from store and
// running commands through exec. logger is tagged with the worker's id
// on every record.
func New(id string, store queuectl.Claimer, cfg *config.Config, exec *executor.Executor, logger *slog.Logger) *Worker {
	return &Worker{
		id:     id,
		store:  store,
		cfg:    cfg,
		exec:   exec,
		logger: logger.With("worker_id", id),
	}
}

// Start begins the claim loop under ctx. It returns ErrDoubleStarted if
// the worker is already running.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.TryStart(); err != nil {
		return err
	}
	w.task.Start(ctx, w.drain, w.pollInterval(ctx))
	w.logger.Info("worker started")
	return nil
}

// Stop signals the claim loop to exit and waits up to timeout for the
// in-flight job, if any, to finish.
func (w *Worker) Stop(timeout time.Duration) error {
	err := w.TryStop(timeout, func() internal.DoneChan { return w.task.Stop() })
	w.logger.Info("worker stopped", "error", err)
	return err
}

func (w *Worker) pollInterval(ctx context.Context) time.Duration {
	seconds, err := w.cfg.GetInt(ctx, config.KeyWorkerPollInterval)
	if err != nil || seconds <= 0 {
		return fallbackPollInterval
	}
	return time.Duration(seconds) * time.Second
}

// drain claims and runs jobs back to back until the store reports no
// eligible work, so a burst of enqueued jobs is not gated by the poll
// interval between each one.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		j, err := w.store.Claim(ctx)
		if err != nil {
			w.logger.Error("claim failed", "error", err)
			return
		}
		if j == nil {
			return
		}
		w.runJob(ctx, j)
	}
}

// runJob executes and records a single claimed job. It deliberately
// uses context.Background() rather than the claim loop's shutdown
// context throughout: a shutdown request must let an in-flight job run
// to completion and its outcome be durably recorded, not abort it or
// lose its result.
func (w *Worker) runJob(_ context.Context, j *job.Job) {
	ctx := context.Background()
	logger := w.logger.With("job_id", j.Id, "attempt", j.Attempts)
	logger.Info("job claimed", "command", j.Command)

	result, panicked := w.safeRun(ctx, j.Command)
	if panicked {
		logger.Error("executor panicked")
	}

	if result.Success() {
		if err := w.store.FinishSuccess(ctx, j.Id, result.ExitCode, result.Stdout, result.Stderr); err != nil {
			logger.Error("finish success failed", "error", err)
		}
		logger.Info("job completed")
		return
	}

	execErr := result.Stderr
	if execErr == "" {
		execErr = result.Stdout
	}
	if execErr == "" {
		execErr = fmt.Sprintf("exit %d", result.ExitCode)
	}
	backoffBase, err := w.cfg.GetInt(ctx, config.KeyBackoffBase)
	if err != nil {
		backoffBase = 2
	}
	if err := w.store.FinishFailure(ctx, j.Id, result.ExitCode, execErr, result.Stdout, result.Stderr, j.Attempts, j.MaxRetries, backoffBase); err != nil {
		logger.Error("finish failure failed", "error", err)
	}
	logger.Warn("job failed", "exit_code", result.ExitCode)
}

// safeRun shields the claim loop from a panicking executor, converting
// it into an ordinary failed result so the job still gets retried or
// dead-lettered rather than taking the whole worker process down with
// it.
func (w *Worker) safeRun(ctx context.Context, command string) (res executor.Result, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			res = executor.Result{
				ExitCode: executor.SpawnFailureExitCode,
				Stderr:   fmt.Sprintf("worker panic: %v", r),
			}
		}
	}()
	res = w.exec.Run(ctx, command)
	return res, false
}
