// Package inspector provides the read and DLQ-replay surface used by
// operator-facing tooling: looking up a job, listing jobs by status,
// summarizing counts, and retrying a dead job.
package inspector
