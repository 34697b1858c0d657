package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c3mb0/mindset-mcp/pkg/state"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	s := NewStore(cfg)
	t.Cleanup(s.Close)
	return s
}

func TestObserveCountsSequentially(t *testing.T) {
	s := newTestStore(t, Config{})
	for i := 1; i <= 5; i++ {
		sess := s.Observe("abc", state.Stuck)
		require.Equal(t, i, sess.InteractionCount)
		assert.Equal(t, state.Stuck, sess.LastState)
	}
}

func TestObserveKeysAreIndependent(t *testing.T) {
	s := newTestStore(t, Config{})
	s.Observe("a", state.Stuck)
	s.Observe("a", state.Stuck)
	b := s.Observe("b", state.ReadyToAct)
	assert.Equal(t, 1, b.InteractionCount)

	a, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, a.InteractionCount)
}

func TestObserveEmptyKeyIsAnonymous(t *testing.T) {
	s := newTestStore(t, Config{})
	s.Observe("", state.Overwhelmed)
	sess, ok := s.Get(AnonymousKey)
	require.True(t, ok)
	assert.Equal(t, AnonymousKey, sess.Key)
	assert.Equal(t, 1, sess.InteractionCount)
}

func TestGetDoesNotCount(t *testing.T) {
	s := newTestStore(t, Config{})
	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Observe("k", state.Stuck)
	s.Get("k")
	s.Get("k")
	assert.Equal(t, 2, s.Observe("k", state.Stuck).InteractionCount)
}

func TestExpiredSessionRestarts(t *testing.T) {
	s := newTestStore(t, Config{TTL: 20 * time.Millisecond})
	s.Observe("k", state.Stuck)
	s.Observe("k", state.Stuck)
	time.Sleep(50 * time.Millisecond)

	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Observe("k", state.Stuck).InteractionCount)
}

func TestObserveConcurrentSameKey(t *testing.T) {
	s := newTestStore(t, Config{})
	const workers, perWorker = 16, 50

	var mu sync.Mutex
	seen := make(map[int]int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n := s.Observe("shared", state.Stuck).InteractionCount
				mu.Lock()
				seen[n]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	total := workers * perWorker
	require.Len(t, seen, total)
	for i := 1; i <= total; i++ {
		assert.Equal(t, 1, seen[i], "count %d", i)
	}
}

func TestObserveConcurrentDistinctKeys(t *testing.T) {
	s := newTestStore(t, Config{})
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			key := fmt.Sprintf("caller-%d", w)
			for i := 1; i <= 10; i++ {
				assert.Equal(t, i, s.Observe(key, state.ReadyToAct).InteractionCount)
			}
		}(w)
	}
	wg.Wait()
}

func TestObserveBoundedByMaxSize(t *testing.T) {
	s := newTestStore(t, Config{MaxSize: 10})
	s.Observe("key-0", state.Stuck)
	s.Observe("key-0", state.Stuck)
	for i := 1; i < 1000; i++ {
		s.Observe(fmt.Sprintf("key-%d", i), state.Overwhelmed)
	}
	s.cache.SyncUpdates()

	assert.LessOrEqual(t, s.Len(), 10)
	_, ok := s.Get("key-0")
	require.False(t, ok, "oldest session should have been evicted")

	sess := s.Observe("key-0", state.ReadyToAct)
	assert.Equal(t, 1, sess.InteractionCount, "evicted session restarts counting")

	newest, ok := s.Get("key-999")
	require.True(t, ok)
	assert.Equal(t, 1, newest.InteractionCount)
}
