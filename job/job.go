package job

import "time"

// Job is a persisted unit of work: a shell command plus the delivery
// state the store maintains while carrying it from submission through
// completion, retry, or the dead-letter queue.
//
// Job values returned by Store methods are snapshots of storage state
// at read time; fields must be mutated only via Store operations.
type Job struct {
	Id      string
	Command string
	Status  Status

	Attempts   uint32
	MaxRetries uint32
	Priority   int32

	CreatedAt time.Time
	UpdatedAt time.Time

	StartedAt  *time.Time
	FinishedAt *time.Time
	NextRunAt  *time.Time

	ResultCode *int
	LastError  string
	Stdout     string
	Stderr     string
}

// Terminal reports whether the job's status is a terminal state under
// the normal claim/retry flow (completed or dead). A terminal job is
// immutable except through DLQ replay, which only applies from Dead.
func (j *Job) Terminal() bool {
	return j.Status == Completed || j.Status == Dead
}
