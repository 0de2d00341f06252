// Package store provides a bun-based SQL storage implementation of the
// queuectl.Store interfaces, backed by SQLite via modernc.org/sqlite
// (a pure-Go driver requiring no cgo).
//
// # Overview
//
// The store persists two tables: jobs (per job.Job) and config (a
// key/value map, see package config). It provides:
//
//   - durable persistence of jobs and configuration
//   - an atomic claim: exactly one caller transitions a given pending
//     job to processing, even under concurrent writers
//   - retry/DLQ transitions driven by FinishFailure
//
// # Claim protocol
//
// Claim opens a transaction with BEGIN IMMEDIATE, which acquires
// SQLite's RESERVED lock at transaction start rather than on first
// write. It selects the single best-eligible pending job (priority
// DESC, created_at ASC) and conditionally updates it
// (WHERE id = ? AND status = 'pending'); zero rows affected means
// another writer won the race, and Claim returns (nil, nil) without
// retrying internally. SQLite's single-writer model means true
// concurrent claims are serialized by the database itself; the busy
// timeout configured on the connection bounds how long a caller waits
// before seeing that contention surfaced as "no job" rather than as an
// error.
//
// # Database lifecycle
//
// Callers are responsible for opening the *bun.DB (Open does this,
// applying WAL mode and a busy_timeout pragma) and calling Init before
// first use. Init is idempotent and runs inside a transaction.
package store
