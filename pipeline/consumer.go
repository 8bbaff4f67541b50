package pipeline

import (
	"context"
	"time"

	"github.com/joeycumines/go-microbatch"
	"github.com/joeycumines/lfqueue/queue"
)

// idlePollInterval is how long a Consumer's polling goroutine backs off
// after an empty Dequeue before trying again. The lock-free queue has no
// blocking receive — Enqueue/Dequeue never suspend — so a consumer that
// wants to avoid busy-spinning when the queue is observably empty must poll
// with a small backoff instead.
const idlePollInterval = time.Millisecond

// Consumer pulls elements off a queue.Queue one at a time and feeds them
// into a microbatch.Batcher, so downstream processing (a telemetry sink,
// say) sees size/time-bounded batches instead of singletons.
type Consumer[E any] struct {
	batcher *microbatch.Batcher[E]
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewConsumer starts a Consumer pulling from q. cfg and process are passed
// through to microbatch.NewBatcher unchanged.
func NewConsumer[E any](q *queue.Queue[E], cfg *microbatch.BatcherConfig, process microbatch.BatchProcessor[E]) *Consumer[E] {
	c := &Consumer[E]{
		batcher: microbatch.NewBatcher[E](cfg, process),
		done:    make(chan struct{}),
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx, q)
	return c
}

func (c *Consumer[E]) run(ctx context.Context, q *queue.Queue[E]) {
	defer close(c.done)

	h := q.Join()
	defer h.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		value, ok := h.Dequeue()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idlePollInterval):
			}
			continue
		}

		if _, err := c.batcher.Submit(ctx, value); err != nil {
			return
		}
	}
}

// Close stops the Consumer's polling goroutine and waits for the underlying
// Batcher to finish any in-flight batch.
func (c *Consumer[E]) Close() error {
	c.cancel()
	<-c.done
	return c.batcher.Close()
}
