package pipeline

import (
	"context"
	"time"

	"github.com/joeycumines/go-longpoll"
	"github.com/joeycumines/lfqueue/queue"
)

// Bridge forwards elements from a queue.Queue onto a buffered channel, so
// callers that want go-longpoll's bounded blocking "receive at least N
// items, or give up after T" semantics can use it unmodified against a
// lock-free queue that otherwise has no blocking receive of its own. This
// is the one place in this package a goroutine parks (on the channel send/
// receive) instead of polling: the forwarding goroutine itself still has to
// poll Dequeue, since that's the queue's only receive primitive, but
// everything downstream of the bridge channel is ordinary blocking Go.
type Bridge[E any] struct {
	ch     chan E
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBridge starts forwarding q's elements onto an internal channel of the
// given buffer size.
func NewBridge[E any](q *queue.Queue[E], bufferSize int) *Bridge[E] {
	b := &Bridge[E]{ch: make(chan E, bufferSize), done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.run(ctx, q)
	return b
}

func (b *Bridge[E]) run(ctx context.Context, q *queue.Queue[E]) {
	defer close(b.done)
	defer close(b.ch)

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

		select {
		case b.ch <- value:
		case <-ctx.Done():
			return
		}
	}
}

// Drain performs one go-longpoll.Channel call against the bridge's internal
// channel: it returns as many values as the configured constraints allow,
// passing each to handler.
func (b *Bridge[E]) Drain(ctx context.Context, cfg *longpoll.ChannelConfig, handler func(value E) error) error {
	return longpoll.Channel(ctx, cfg, b.ch, handler)
}

// Close stops the forwarding goroutine. Any value already buffered in the
// internal channel is dropped.
func (b *Bridge[E]) Close() {
	b.cancel()
	<-b.done
}
