package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	"github.com/queuectl/queuectl/config"
	"github.com/queuectl/queuectl/executor"
	"github.com/queuectl/queuectl/store"
	"github.com/queuectl/queuectl/supervisor"
	"github.com/queuectl/queuectl/worker"
)

const defaultWorkerCount = 4

func dataDir() string {
	if v := os.Getenv("QUEUECTL_DATA_DIR"); v != "" {
		return v
	}
	return "./data"
}

func runStart(ctx context.Context, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	n := fs.Int("workers", defaultWorkerCount, "number of worker processes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}
	dir := dataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	buildCmd := func(workers int) (*exec.Cmd, error) {
		return supervisor.NewSuperviseCmd(exe, dir, workers)
	}
	if err := supervisor.StartManager(ctx, dir, *n, buildCmd); err != nil {
		return err
	}
	fmt.Printf("started supervisor with %d workers\n", *n)
	return nil
}

func runStop(args []string, logger *slog.Logger) error {
	return supervisor.StopManager(dataDir(), logger)
}

func runStatus(args []string) error {
	dir := dataDir()
	running := supervisor.IsManagerRunning(dir)
	fmt.Printf("running: %v\n", running)
	if running {
		fmt.Printf("workers: %d\n", supervisor.WorkerCount(dir))
	}
	return nil
}

// runSupervise is the hidden entrypoint the detached supervisor process
// runs: "queuectl __supervise <worker-count>".
func runSupervise(ctx context.Context, args []string, logger *slog.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("__supervise: expected a worker count argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("__supervise: invalid worker count: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}
	dir := dataDir()

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	newWorkerCmd := func(i int) (*exec.Cmd, error) {
		cmd := exec.Command(exe, "__worker", strconv.Itoa(i))
		cmd.Env = os.Environ()
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd, nil
	}

	return supervisor.Supervise(ctx, supervisor.SuperviseConfig{
		DataDir:      dir,
		WorkerCount:  n,
		NewWorkerCmd: newWorkerCmd,
		Reconciler:   s,
		Logger:       logger,
	})
}

// runWorker is the hidden entrypoint each worker process runs:
// "queuectl __worker <index>". It blocks until terminated.
func runWorker(ctx context.Context, args []string, logger *slog.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("__worker: expected a worker index argument")
	}

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cfg := config.New(s)
	w := worker.New(args[0], s, cfg, executor.New(), logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := w.Start(runCtx); err != nil {
		return err
	}

	waitForTermination()
	return w.Stop(stopTimeout)
}
