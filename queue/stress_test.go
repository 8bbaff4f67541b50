package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestTwoProducersDrainAfter checks that two concurrent producers each
// preserve their own relative ordering, and that every value from both
// shows up exactly once once drained afterward.
func TestTwoProducersDrainAfter(t *testing.T) {
	q := New[int]()

	var g errgroup.Group
	g.Go(func() error {
		h := q.Join()
		defer h.Close()
		for i := 0; i < 1000; i++ {
			h.Enqueue(i)
		}
		return nil
	})
	g.Go(func() error {
		h := q.Join()
		defer h.Close()
		for i := 1000; i < 2000; i++ {
			h.Enqueue(i)
		}
		return nil
	})
	require.NoError(t, g.Wait())

	var got []int
	for {
		v, ok := q.Dequeue()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Len(t, got, 2000)

	seen := make(map[int]bool, 2000)
	var lowSeq, highSeq []int
	for _, v := range got {
		require.False(t, seen[v], "double delivery of %d", v)
		seen[v] = true
		if v < 1000 {
			lowSeq = append(lowSeq, v)
		} else {
			highSeq = append(highSeq, v)
		}
	}
	require.True(t, sortedAscending(lowSeq))
	require.True(t, sortedAscending(highSeq))
}

func sortedAscending(s []int) bool {
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return false
		}
	}
	return true
}

// TestConcurrentMixed runs multiple producers and consumers concurrently,
// checking conservation (every enqueued value is delivered exactly once)
// and a final zero size.
func TestConcurrentMixed(t *testing.T) {
	const (
		producers    = 4
		perProducer  = 5000
		totalValues  = producers * perProducer
	)

	q := New[int]()
	var delivered atomic.Int64
	results := make(chan int, totalValues)

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			h := q.Join()
			defer h.Close()
			base := p * perProducer
			for i := 0; i < perProducer; i++ {
				h.Enqueue(base + i)
			}
			return nil
		})
	}

	consumerCtx, cancel := context.WithCancel(context.Background())
	var consumerWG sync.WaitGroup
	for c := 0; c < producers; c++ {
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()
			h := q.Join()
			defer h.Close()
			for {
				select {
				case <-consumerCtx.Done():
					return
				default:
				}
				v, ok := h.Dequeue()
				if !ok {
					if delivered.Load() >= totalValues {
						return
					}
					continue
				}
				results <- v
				if delivered.Add(1) >= totalValues {
					return
				}
			}
		}()
	}

	require.NoError(t, g.Wait())
	consumerWG.Wait()
	cancel()
	close(results)

	seen := make(map[int]bool, totalValues)
	count := 0
	for v := range results {
		require.False(t, seen[v], "double delivery of %d", v)
		seen[v] = true
		count++
	}
	require.Equal(t, totalValues, count)
	require.Equal(t, 0, q.Size())
}

// TestEmptyRaces hammers Dequeue against a slow producer, checking that
// repeatedly racing against an observably-empty queue never reports more
// successful dequeues than values actually enqueued.
func TestEmptyRaces(t *testing.T) {
	q := New[int]()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	var enqueued atomic.Int64
	wg.Add(1)
	go func() {
		defer wg.Done()
		h := q.Join()
		defer h.Close()
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		deadline := time.After(200 * time.Millisecond)
		for {
			select {
			case <-deadline:
				close(stop)
				return
			case <-ticker.C:
				h.Enqueue(int(enqueued.Add(1)))
			}
		}
	}()

	var successes atomic.Int64
	wg.Add(1)
	go func() {
		defer wg.Done()
		h := q.Join()
		defer h.Close()
		for i := 0; i < 10000; i++ {
			if _, ok := h.Dequeue(); ok {
				successes.Add(1)
			}
		}
	}()

	wg.Wait()

	// drain whatever's left; every successful dequeue (during or after the
	// race) must correspond to something that was actually enqueued.
	for {
		if _, ok := q.Dequeue(); !ok {
			break
		}
		successes.Add(1)
	}
	require.LessOrEqual(t, successes.Load(), enqueued.Load())
}

// TestChurnedThreads runs many short-lived goroutines that each join, do a
// burst of work, and close their Handle. The queue must end empty with
// nothing leaked across the churn.
func TestChurnedThreads(t *testing.T) {
	q := New[int]()
	const (
		workers    = 64
		opsPerWork = 200
	)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			h := q.Join()
			defer h.Close()
			for i := 0; i < opsPerWork; i++ {
				h.Enqueue(i)
			}
			for i := 0; i < opsPerWork; i++ {
				h.Dequeue()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 0, q.Size())
}
