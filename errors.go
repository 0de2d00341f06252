package queuectl

import "errors"

var (
	// ErrNotFound indicates an operation named a job id that does not exist.
	ErrNotFound = errors.New("queuectl: job not found")

	// ErrNotInDLQ indicates a DLQ replay was attempted on a job that is
	// not currently in the Dead state.
	ErrNotInDLQ = errors.New("queuectl: job is not in the dead letter queue")

	// ErrDuplicateID indicates Insert was called with an id that already
	// exists in the store.
	ErrDuplicateID = errors.New("queuectl: job id already exists")

	// ErrConfigInvalid indicates Get/Set was called with a key the
	// store and its hard-coded defaults do not recognize.
	ErrConfigInvalid = errors.New("queuectl: unknown config key")

	// ErrSupervisorAlreadyRunning is returned by StartManager when a
	// live supervisor already owns the PID file.
	ErrSupervisorAlreadyRunning = errors.New("queuectl: worker manager already running")

	// ErrSupervisorNotRunning is returned by StopManager when no live
	// supervisor is found.
	ErrSupervisorNotRunning = errors.New("queuectl: worker manager not running")
)
