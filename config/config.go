package config

import (
	"context"
	"strconv"
	"strings"

	"github.com/queuectl/queuectl"
)

// Keys recognized by the core.
const (
	KeyMaxRetries         = "max_retries"
	KeyBackoffBase        = "backoff_base"
	KeyWorkerPollInterval = "worker_poll_interval"
	KeyDBPath             = "db_path"
)

// Defaults holds the hard-coded fallback value for every recognized
// key, used whenever the store has no entry for it.
var Defaults = map[string]string{
	KeyMaxRetries:         "3",
	KeyBackoffBase:        "2",
	KeyWorkerPollInterval: "1",
	KeyDBPath:             "./data/queuectl.db",
}

var hyphenToUnderscore = map[string]string{
	"max-retries":          KeyMaxRetries,
	"backoff-base":         KeyBackoffBase,
	"worker-poll-interval": KeyWorkerPollInterval,
	"db-path":              KeyDBPath,
}

// Normalize converts a hyphenated key to its canonical underscore form.
// Keys already in underscore form pass through unchanged; any other key
// has every hyphen replaced by an underscore.
func Normalize(key string) string {
	if canonical, ok := hyphenToUnderscore[key]; ok {
		return canonical
	}
	return strings.ReplaceAll(key, "-", "_")
}

func recognized(key string) bool {
	_, ok := Defaults[key]
	return ok
}

// Config wraps a queuectl.ConfigStore with key normalization and
// default fall-through.
type Config struct {
	store queuectl.ConfigStore
}

// New wraps store for typed, defaulted access.
func New(store queuectl.ConfigStore) *Config {
	return &Config{store: store}
}

// Get returns the effective value for key: the stored value if set,
// otherwise the hard-coded default. It returns ErrConfigInvalid for
// keys the core does not recognize.
func (c *Config) Get(ctx context.Context, key string) (string, error) {
	key = Normalize(key)
	if !recognized(key) {
		return "", queuectl.ErrConfigInvalid
	}
	value, ok, err := c.store.GetConfig(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return Defaults[key], nil
	}
	return value, nil
}

// Set persists value under key. It returns ErrConfigInvalid for keys
// the core does not recognize.
func (c *Config) Set(ctx context.Context, key, value string) error {
	key = Normalize(key)
	if !recognized(key) {
		return queuectl.ErrConfigInvalid
	}
	return c.store.SetConfig(ctx, key, value)
}

// GetInt is a convenience wrapper around Get for integer-valued keys
// (max_retries, backoff_base, worker_poll_interval). An empty or
// unparsable stored value falls back to the key's default.
func (c *Config) GetInt(ctx context.Context, key string) (int64, error) {
	value, err := c.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		n, err = strconv.ParseInt(Defaults[Normalize(key)], 10, 64)
		if err != nil {
			return 0, err
		}
	}
	return n, nil
}
