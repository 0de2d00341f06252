// Package worker implements the claim-execute-record loop run inside
// each worker process spawned by the supervisor.
//
// A Worker owns no state beyond a queuectl.Claimer, an executor.Executor
// and a config.Config: every decision about what to run next, and what a
// finished job's exit code means, is delegated to those collaborators.
// The loop itself follows Worker.LifecycleBase's start-once/stop-once
// discipline and internal.TimerTask's tick-driven polling (the same
// TimerTask that drives the supervisor's monitor loop).
package worker
