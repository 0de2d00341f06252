// Package producer implements job submission: filling in defaults the
// caller omitted (id, priority, retry budget) before handing the job to
// the store.
package producer
