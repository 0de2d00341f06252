package supervisor

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/queuectl/queuectl"
	"github.com/queuectl/queuectl/internal"
)

// monitorInterval is how often Supervise checks for the shutdown file
// and for children that have exited on their own.
const monitorInterval = 500 * time.Millisecond

// childJoinTimeout bounds how long Supervise waits for a SIGTERM'd
// child to exit before escalating to SIGKILL.
const childJoinTimeout = 10 * time.Second

// SuperviseConfig configures a single run of Supervise.
type SuperviseConfig struct {
	// DataDir holds the PID/shutdown marker files.
	DataDir string

	// WorkerCount is how many worker child processes to spawn.
	WorkerCount int

	// NewWorkerCmd builds the not-yet-started command for worker i
	// (1-indexed). Supervise calls it once per worker and owns the
	// returned *exec.Cmd's lifecycle.
	NewWorkerCmd func(i int) (*exec.Cmd, error)

	// Reconciler, if non-nil, is run once before any worker is
	// spawned to recover jobs stranded by a previous supervisor's
	// unclean exit.
	Reconciler queuectl.Reconciler

	Logger *slog.Logger
}

// Supervise runs the supervisor's full lifecycle in the calling
// process: reconcile stranded jobs, spawn WorkerCount children, write
// the PID file, then block monitoring for a shutdown request or for
// every child to exit on its own. It returns once shutdown is complete
// and both marker files have been removed.
func Supervise(ctx context.Context, cfg SuperviseConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Reconciler != nil {
		n, err := cfg.Reconciler.ReconcileStranded(ctx)
		if err != nil {
			logger.Error("stranded job reconciliation failed", "error", err)
		} else if n > 0 {
			logger.Info("reconciled stranded jobs", "count", n)
		}
	}

	children := make([]*exec.Cmd, 0, cfg.WorkerCount)
	for i := 1; i <= cfg.WorkerCount; i++ {
		cmd, err := cfg.NewWorkerCmd(i)
		if err != nil {
			terminateAll(children)
			return err
		}
		if err := cmd.Start(); err != nil {
			terminateAll(children)
			return err
		}
		logger.Info("worker started", "index", i, "pid", cmd.Process.Pid)
		children = append(children, cmd)
	}

	pidFile := PidFilePath(cfg.DataDir)
	if err := writePID(pidFile, os.Getpid()); err != nil {
		terminateAll(children)
		return err
	}
	defer removeIfExists(pidFile)

	shutdownFile := ShutdownFilePath(cfg.DataDir)
	defer removeIfExists(shutdownFile)

	waitMonitor(ctx, cfg.DataDir, children, logger)
	shutdownChildren(children, logger)
	return nil
}

// waitMonitor blocks until the shutdown file appears, every child has
// exited on its own, or ctx is cancelled.
func waitMonitor(ctx context.Context, dataDir string, children []*exec.Cmd, logger *slog.Logger) {
	var task internal.TimerTask
	var stopped atomic.Bool
	stop := make(chan struct{})

	signalStop := func(reason string) {
		if stopped.CompareAndSwap(false, true) {
			logger.Info(reason)
			close(stop)
		}
	}

	check := func(context.Context) {
		if _, err := os.Stat(ShutdownFilePath(dataDir)); err == nil {
			signalStop("shutdown file observed")
			return
		}
		if allExited(children) {
			signalStop("all workers exited on their own")
		}
	}

	monitorCtx, cancel := context.WithCancel(ctx)
	task.Start(monitorCtx, check, monitorInterval)

	select {
	case <-stop:
	case <-ctx.Done():
	}
	cancel()
	<-task.Stop()
}

func allExited(children []*exec.Cmd) bool {
	for _, c := range children {
		if c.ProcessState == nil {
			return false
		}
	}
	return true
}

// shutdownChildren sends SIGTERM to every still-running child, waits up
// to childJoinTimeout via one errgroup goroutine per child, then
// force-kills whatever is left.
func shutdownChildren(children []*exec.Cmd, logger *slog.Logger) {
	type tracked struct {
		cmd  *exec.Cmd
		done atomic.Bool
	}
	tr := make([]*tracked, len(children))
	for i, c := range children {
		tr[i] = &tracked{cmd: c}
		if c.Process != nil {
			_ = c.Process.Signal(syscall.SIGTERM)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), childJoinTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tr {
		t := t
		g.Go(func() error {
			done := make(chan error, 1)
			go func() {
				err := t.cmd.Wait()
				t.done.Store(true)
				done <- err
			}()
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	_ = g.Wait()

	for _, t := range tr {
		if t.done.Load() {
			continue
		}
		if t.cmd.Process == nil {
			continue
		}
		logger.Warn("force killing worker", "pid", t.cmd.Process.Pid)
		_ = t.cmd.Process.Signal(syscall.SIGKILL)
	}
}

// terminateAll is used when startup itself fails partway through
// spawning workers, to avoid leaking already-started children.
func terminateAll(children []*exec.Cmd) {
	for _, c := range children {
		if c.Process != nil {
			_ = c.Process.Kill()
		}
	}
	for _, c := range children {
		_ = c.Wait()
	}
}
