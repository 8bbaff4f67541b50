package pipeline

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/lfqueue/queue"
)

// Pipeline combines a queue.Queue with optional per-category admission
// control, so a telemetry-buffer producer that would otherwise overwhelm
// consumers downstream of the lock-free queue gets throttled before its
// value ever touches Enqueue.
type Pipeline[E any] struct {
	Queue   *queue.Queue[E]
	limiter *catrate.Limiter
}

// New constructs a Pipeline. rates configures the optional admission-control
// limiter (see go-catrate.NewLimiter); a nil or empty map disables admission
// control entirely, and TryEnqueue always admits.
func New[E any](rates map[time.Duration]int, opts ...queue.Option) *Pipeline[E] {
	p := &Pipeline[E]{Queue: queue.New[E](opts...)}
	if len(rates) > 0 {
		p.limiter = catrate.NewLimiter(rates)
	}
	return p
}

// TryEnqueue admits value under category's rate limit (if admission control
// is configured) and enqueues it. ok is false if the category's rate limit
// rejected the value; next is the next time an event may be admitted for
// that category (zero value if unknown or admission control is disabled).
func (p *Pipeline[E]) TryEnqueue(category any, value E) (next time.Time, ok bool) {
	if p.limiter != nil {
		var admitted bool
		next, admitted = p.limiter.Allow(category)
		if !admitted {
			return next, false
		}
	}
	p.Queue.Enqueue(value)
	return next, true
}
