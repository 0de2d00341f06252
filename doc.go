// Package queuectl provides the storage-agnostic interfaces, error
// kinds and shared lifecycle primitives for a durable, single-host job
// queue.
//
// # Overview
//
// queuectl models jobs as shell commands carrying a retry budget, a
// priority, and an optional earliest-run time. A durable Store persists
// jobs and configuration; a Worker claims and executes one job at a
// time; a Supervisor spawns a fixed pool of Worker processes and
// coordinates their shutdown.
//
// # Delivery Semantics
//
// Execution is at-least-once: a job may run more than once if its
// worker process is killed mid-execution, leaving it "stranded" in
// processing until a supervisor startup reconciliation pass reclaims
// it. Concurrently, the claim protocol guarantees at-most-one worker
// owns a given attempt at a time.
//
// # State Machine
//
//	pending    -> processing                 (Claim)
//	processing -> completed                  (FinishSuccess)
//	processing -> pending, next_run_at set    (FinishFailure, retry)
//	processing -> dead                        (FinishFailure, budget exhausted)
//	dead       -> pending, attempts reset     (Replay)
//
// completed and dead are terminal under normal flow.
//
// # Interfaces
//
//	Enqueuer    — insert new jobs
//	Claimer     — claim, complete, fail and replay jobs
//	Observer    — read-only job views
//	ConfigStore — raw string key/value configuration
//
// Storage implementations (see package store) must provide atomic
// claim semantics: exactly one caller observes a given pending job as
// claimed, even under concurrent writers and process crashes.
package queuectl
