package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/queuectl/queuectl"
)

// startupGrace is how long StartManager waits before checking whether
// the detached supervisor process actually came up.
const startupGrace = time.Second

// stopPollInterval and stopMaxElapsed bound StopManager's liveness poll
// to roughly 50 checks, 200ms apart.
const (
	stopPollInterval = 200 * time.Millisecond
	stopMaxElapsed   = 10 * time.Second
)

// forceKillGrace bounds how long StopManager waits after a forced
// termination signal before giving up on a clean liveness read.
const forceKillGrace = 5 * time.Second

// StartManager launches the detached supervisor process built by
// buildCmd, which owns n worker processes (NewSuperviseCmd puts the data
// directory into that process's environment so it finds the same marker
// files). It refuses with
// ErrSupervisorAlreadyRunning if a supervisor is already live.
func StartManager(ctx context.Context, dataDir string, n int, buildCmd func(n int) (*exec.Cmd, error)) error {
	if IsManagerRunning(dataDir) {
		return queuectl.ErrSupervisorAlreadyRunning
	}
	removeIfExists(ShutdownFilePath(dataDir))

	cmd, err := buildCmd(n)
	if err != nil {
		return fmt.Errorf("supervisor: build supervise command: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("supervisor: start supervise process: %w", err)
	}
	// The detached process outlives this call; releasing it avoids
	// leaving a zombie behind once it exits.
	go func() { _ = cmd.Wait() }()

	select {
	case <-time.After(startupGrace):
	case <-ctx.Done():
		return ctx.Err()
	}

	if !IsManagerRunning(dataDir) {
		return fmt.Errorf("supervisor: failed to start")
	}
	return nil
}

// StopManager asks a running supervisor to shut down gracefully by
// creating the shutdown file, then polls for up to stopMaxElapsed
// before falling back to forcefully terminating the supervisor
// process. Marker files are removed regardless of how shutdown
// concluded.
func StopManager(dataDir string, logger *slog.Logger) error {
	if !IsManagerRunning(dataDir) {
		return queuectl.ErrSupervisorNotRunning
	}

	pidFile := PidFilePath(dataDir)
	shutdownFile := ShutdownFilePath(dataDir)
	defer removeIfExists(pidFile)
	defer removeIfExists(shutdownFile)

	if err := os.WriteFile(shutdownFile, []byte("stop"), 0o644); err != nil {
		return fmt.Errorf("supervisor: write shutdown file: %w", err)
	}

	b := backoff.WithMaxElapsedTime(backoff.NewConstantBackOff(stopPollInterval), stopMaxElapsed)
	waitForExit := func() error {
		if IsManagerRunning(dataDir) {
			return fmt.Errorf("supervisor still running")
		}
		return nil
	}
	if err := backoff.Retry(waitForExit, b); err == nil {
		return nil
	}

	logger.Warn("supervisor did not stop gracefully, forcing termination")
	return forceTerminate(pidFile)
}

func forceTerminate(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil || pid == 0 {
		return nil
	}
	gproc, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}
	_ = gproc.Terminate()

	deadline := time.Now().Add(forceKillGrace)
	for time.Now().Before(deadline) {
		running, err := gproc.IsRunning()
		if err != nil || !running {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return gproc.Kill()
}

// newSuperviseCmd is the concrete constructor wired by cmd/queuectl. It
// re-execs the current binary with the hidden "__supervise" argument so
// the supervisor outlives the CLI invocation that launched it.
func newSuperviseCmd(executable, dataDir string, workerCount int) (*exec.Cmd, error) {
	if executable == "" {
		var err error
		executable, err = os.Executable()
		if err != nil {
			return nil, err
		}
	}
	cmd := exec.Command(executable, "__supervise", strconv.Itoa(workerCount))
	cmd.Env = append(os.Environ(), "QUEUECTL_DATA_DIR="+dataDir)
	cmd.Stdin = nil
	return cmd, nil
}

// NewSuperviseCmd exposes newSuperviseCmd's command construction for
// cmd/queuectl to pass into StartManager.
func NewSuperviseCmd(executable, dataDir string, workerCount int) (*exec.Cmd, error) {
	return newSuperviseCmd(executable, dataDir, workerCount)
}
