// Package executor runs shell commands on behalf of a worker and
// reports their outcome as plain data, never as an error: a timed-out
// or unspawnable command is a Result, not an exception, so the caller's
// retry/DLQ bookkeeping is the only place that decides what a failure
// means.
package executor
