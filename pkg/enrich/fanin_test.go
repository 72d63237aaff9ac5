package enrich

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordinator_FiresOnceWhenBothBranchesComplete(t *testing.T) {
	c := NewCoordinator()

	require.False(t, c.EntityDone("evt-1"))
	require.True(t, c.TopicDone("evt-1"))
}

func TestCoordinator_FiresRegardlessOfOrder(t *testing.T) {
	c := NewCoordinator()

	require.False(t, c.TopicDone("evt-1"))
	require.True(t, c.EntityDone("evt-1"))
}

func TestCoordinator_FiresExactlyOnceUnderConcurrentCompletions(t *testing.T) {
	c := NewCoordinator()
	const workers = 50

	var fires int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if c.EntityDone("evt-1") {
				mu.Lock()
				fires++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			if c.TopicDone("evt-1") {
				mu.Lock()
				fires++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, fires)
}
