package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuectl/queuectl/job"
)

// TestConcurrentClaimsNeverDoubleAssign exercises the claim protocol's
// central guarantee: across many concurrent claimers, each inserted job
// is handed out to exactly one winner.
func TestConcurrentClaimsNeverDoubleAssign(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, s.Insert(ctx, newJob(jobID(i), "echo hi")))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = make(map[string]int)
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				j, err := s.Claim(ctx)
				if err != nil || j == nil {
					return
				}
				mu.Lock()
				claimed[j.Id]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, n)
	for id, count := range claimed {
		assert.Equalf(t, 1, count, "job %s claimed %d times", id, count)
	}

	for i := 0; i < n; i++ {
		got, err := s.Get(ctx, jobID(i))
		require.NoError(t, err)
		assert.Equal(t, job.Processing, got.Status)
		assert.Equal(t, uint32(1), got.Attempts)
	}
}

func jobID(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "job-" + string(letters[i%len(letters)]) + string(rune('0'+i/len(letters)))
}
