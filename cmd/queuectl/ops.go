package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/queuectl/queuectl"
	"github.com/queuectl/queuectl/config"
	"github.com/queuectl/queuectl/job"
)

func runEnqueue(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
	id := fs.String("id", "", "explicit job id (generated if omitted)")
	priority := fs.Int("priority", 0, "scheduling priority, higher runs first")
	maxRetries := fs.Int("max-retries", -1, "retry budget (defaults to the configured max_retries)")
	nextRunAt := fs.String("next-run-at", "", "ISO-8601 timestamp before which the job is not eligible to run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("enqueue: a command is required")
	}
	command := strings.Join(fs.Args(), " ")

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	var retries *uint32
	if *maxRetries >= 0 {
		v := uint32(*maxRetries)
		retries = &v
	}

	var when *time.Time
	if *nextRunAt != "" {
		parsed, err := time.Parse(time.RFC3339, *nextRunAt)
		if err != nil {
			return fmt.Errorf("enqueue: invalid --next-run-at: %w", err)
		}
		when = &parsed
	}

	j, err := newProducer(s).Enqueue(ctx, *id, command, int32(*priority), retries, when)
	if err != nil {
		return err
	}
	return printJSON(j)
}

func runGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("get: expected exactly one job id")
	}
	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	j, err := newInspector(s).Get(ctx, args[0])
	if err != nil {
		return err
	}
	if j == nil {
		return queuectl.ErrNotFound
	}
	return printJSON(j)
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	limit := fs.Int("limit", 50, "maximum rows to return")
	offset := fs.Int("offset", 0, "rows to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var st job.Status
	if *status != "" {
		parsed, err := job.ParseStatus(*status)
		if err != nil {
			return err
		}
		st = parsed
	}

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	jobs, err := newInspector(s).List(ctx, st, *limit, *offset)
	if err != nil {
		return err
	}
	return printJSON(jobs)
}

func runCounts(ctx context.Context, args []string) error {
	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	counts, err := newInspector(s).Counts(ctx)
	if err != nil {
		return err
	}
	return printJSON(counts)
}

func runRetry(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("retry", flag.ExitOnError)
	maxRetries := fs.Int("max-retries", -1, "override the retry budget on replay")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("retry: expected exactly one job id")
	}

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	var retries *uint32
	if *maxRetries >= 0 {
		v := uint32(*maxRetries)
		retries = &v
	}
	return newInspector(s).Retry(ctx, fs.Arg(0), retries)
}

func runConfig(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("config: expected \"get <key>\" or \"set <key> <value>\"")
	}

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	cfg := config.New(s)

	switch args[0] {
	case "get":
		value, err := cfg.Get(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("config set: expected a key and a value")
		}
		return cfg.Set(ctx, args[1], args[2])
	default:
		return fmt.Errorf("config: unknown subcommand %q", args[0])
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
