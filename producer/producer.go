package producer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/queuectl/queuectl"
	"github.com/queuectl/queuectl/config"
	"github.com/queuectl/queuectl/job"
)

// Producer submits new work to the queue, filling in whatever the
// caller left zero-valued.
type Producer struct {
	store queuectl.Enqueuer
	cfg   *config.Config
}

// New builds a Producer writing through store, defaulting MaxRetries
// from cfg when a submission omits it.
func New(store queuectl.Enqueuer, cfg *config.Config) *Producer {
	return &Producer{store: store, cfg: cfg}
}

// Enqueue submits command as a new pending job and returns the Job it
// submitted, including any defaults this call applied. Timestamps the
// store assigns on insert (CreatedAt, UpdatedAt) are not filled in on
// the returned value.
//
// If id is empty, a new one is generated. If maxRetries is nil, the
// configured default max_retries is used. nextRunAt, if non-nil, delays
// eligibility until that instant and is stored verbatim.
func (p *Producer) Enqueue(ctx context.Context, id, command string, priority int32, maxRetries *uint32, nextRunAt *time.Time) (*job.Job, error) {
	if id == "" {
		id = uuid.New().String()
	}

	retries := maxRetries
	if retries == nil {
		defaulted, err := p.cfg.GetInt(ctx, config.KeyMaxRetries)
		if err != nil {
			return nil, err
		}
		v := uint32(defaulted)
		retries = &v
	}

	j := &job.Job{
		Id:         id,
		Command:    command,
		Status:     job.Pending,
		MaxRetries: *retries,
		Priority:   priority,
		NextRunAt:  nextRunAt,
	}

	if err := p.store.Insert(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}
