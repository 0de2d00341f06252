package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/queuectl/queuectl/job"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`

	Id      string `bun:"id,pk"`
	Command string `bun:"command,notnull"`
	Status  string `bun:"status,notnull,default:'pending'"`

	Attempts   uint32 `bun:"attempts,notnull,default:0"`
	MaxRetries uint32 `bun:"max_retries,notnull,default:3"`
	Priority   int32  `bun:"priority,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	StartedAt  *time.Time `bun:"started_at,nullzero,default:null"`
	FinishedAt *time.Time `bun:"finished_at,nullzero,default:null"`
	NextRunAt  *time.Time `bun:"next_run_at,nullzero,default:null"`

	ResultCode *int   `bun:"result_code,nullzero,default:null"`
	LastError  string `bun:"last_error"`
	Stdout     string `bun:"stdout"`
	Stderr     string `bun:"stderr"`
}

func (jm *jobModel) toJob() (*job.Job, error) {
	status, err := job.ParseStatus(jm.Status)
	if err != nil {
		return nil, err
	}
	return &job.Job{
		Id:         jm.Id,
		Command:    jm.Command,
		Status:     status,
		Attempts:   jm.Attempts,
		MaxRetries: jm.MaxRetries,
		Priority:   jm.Priority,
		CreatedAt:  jm.CreatedAt,
		UpdatedAt:  jm.UpdatedAt,
		StartedAt:  jm.StartedAt,
		FinishedAt: jm.FinishedAt,
		NextRunAt:  jm.NextRunAt,
		ResultCode: jm.ResultCode,
		LastError:  jm.LastError,
		Stdout:     jm.Stdout,
		Stderr:     jm.Stderr,
	}, nil
}

func fromJob(j *job.Job) *jobModel {
	now := time.Now().UTC()
	return &jobModel{
		Id:         j.Id,
		Command:    j.Command,
		Status:     job.Pending.String(),
		MaxRetries: j.MaxRetries,
		Priority:   j.Priority,
		CreatedAt:  now,
		UpdatedAt:  now,
		NextRunAt:  j.NextRunAt,
	}
}

type configModel struct {
	bun.BaseModel `bun:"table:config"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

const (
	truncatedErrorBytes  = 2000
	truncatedOutputBytes = 10000
)

// truncate returns the leading n bytes of s, or s unchanged if shorter.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
