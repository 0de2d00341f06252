// Command queuectl is the operator-facing entrypoint: it submits jobs,
// inspects queue state, drives DLQ replay, and starts or stops the
// worker supervisor. Two hidden subcommands, __supervise and __worker,
// are re-exec targets used internally by the supervisor; they are not
// part of the documented CLI surface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/queuectl/queuectl/config"
	"github.com/queuectl/queuectl/inspector"
	"github.com/queuectl/queuectl/producer"
	"github.com/queuectl/queuectl/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	logger := newLogger(cmd)
	ctx := context.Background()

	var err error
	switch cmd {
	case "__supervise":
		err = runSupervise(ctx, args, logger)
	case "__worker":
		err = runWorker(ctx, args, logger)
	case "start":
		err = runStart(ctx, args, logger)
	case "stop":
		err = runStop(args, logger)
	case "status":
		err = runStatus(args)
	case "enqueue":
		err = runEnqueue(ctx, args)
	case "list":
		err = runList(ctx, args)
	case "get":
		err = runGet(ctx, args)
	case "counts":
		err = runCounts(ctx, args)
	case "retry":
		err = runRetry(ctx, args)
	case "config":
		err = runConfig(ctx, args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "queuectl: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "queuectl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, strings.TrimSpace(`
usage: queuectl <command> [arguments]

commands:
  enqueue [--id ID] [--priority N] [--max-retries N] <command...>
  list [--status pending|processing|completed|failed|dead] [--limit N] [--offset N]
  get <id>
  counts
  retry <id> [--max-retries N]
  config get <key>
  config set <key> <value>
  start [--workers N]
  stop
  status
`))
}

func newLogger(cmd string) *slog.Logger {
	if cmd == "__supervise" || cmd == "__worker" {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// openStore opens and initializes the store at the resolved default
// path, honoring QUEUECTL_DB_PATH.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	path := store.ResolvePath("")
	db, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.Init(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	s := store.New(db)
	return s, func() { _ = db.Close() }, nil
}

func newProducer(s *store.Store) *producer.Producer {
	return producer.New(s, config.New(s))
}

func newInspector(s *store.Store) *inspector.Inspector {
	return inspector.New(s)
}
