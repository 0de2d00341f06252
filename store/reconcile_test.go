package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuectl/queuectl/job"
)

func TestReconcileStrandedRequeuesJobWithBudgetLeft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &job.Job{Id: "a", Command: "true", MaxRetries: 3}))
	claimed, err := s.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", claimed.Id)
	require.Equal(t, job.Processing, claimed.Status)

	count, err := s.ReconcileStranded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	after, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, job.Pending, after.Status)
	assert.EqualValues(t, 1, after.Attempts)
	assert.Nil(t, after.StartedAt)
	require.NotNil(t, after.NextRunAt)
}

func TestReconcileStrandedDeadLettersExhaustedJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &job.Job{Id: "b", Command: "true", MaxRetries: 0}))
	_, err := s.Claim(ctx)
	require.NoError(t, err)

	count, err := s.ReconcileStranded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	after, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, job.Dead, after.Status)
}

func TestReconcileStrandedIgnoresNonProcessingJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &job.Job{Id: "c", Command: "true", MaxRetries: 3}))

	count, err := s.ReconcileStranded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
