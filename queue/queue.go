package queue

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/lfqueue/hazard"
)

// Logger is the diagnostic logging seam for a Queue. It has the same method
// set as hazard.Logger: a Logger given via WithLogger is handed to the
// Queue's hazard domain, which calls it for scan telemetry and misuse
// warnings; see hazard.Logger's doc comment for the rationale.
type Logger interface {
	Warn(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, map[string]any)  {}
func (noopLogger) Debug(string, map[string]any) {}

// Stats is an advisory, relaxed telemetry snapshot: enqueue/dequeue
// counters alongside the current size, useful for a consumer such as a
// telemetry buffer that wants visibility without instrumenting every call
// site itself. None of these fields are a synchronization point.
type Stats struct {
	Enqueued int64
	Dequeued int64
	Size     int64
}

// Option configures a Queue constructed via New.
type Option func(*config)

type config struct {
	threshold float64
	logger    Logger
}

// WithScanThreshold overrides the hazard reclaimer's scan-trigger
// multiplier; see hazard.WithThreshold. A non-positive k keeps the
// default multiplier.
func WithScanThreshold(k float64) Option {
	return func(c *config) { c.threshold = k }
}

// WithLogger overrides the Queue's diagnostic logger.
func WithLogger(l Logger) Option {
	return func(c *config) { c.logger = l }
}

// Queue is the lock-free MPMC FIFO queue. The zero value is not usable;
// construct with New.
type Queue[E any] struct {
	head atomic.Pointer[node[E]]
	tail atomic.Pointer[node[E]]
	size atomic.Int64

	enqueued atomic.Int64
	dequeued atomic.Int64

	domain *hazard.Domain[node[E]]
	pool   sync.Pool
	logger Logger
}

// New constructs a Queue containing exactly one dummy node and reporting
// Size() == 0.
func New[E any](opts ...Option) *Queue[E] {
	cfg := config{threshold: 0}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = noopLogger{}
	}

	q := &Queue[E]{logger: logger}
	q.pool.New = func() any { return new(node[E]) }

	var hazardOpts []hazard.Option
	if cfg.threshold > 0 {
		hazardOpts = append(hazardOpts, hazard.WithThreshold(cfg.threshold))
	}
	if cfg.logger != nil {
		hazardOpts = append(hazardOpts, hazard.WithLogger(cfg.logger))
	}
	q.domain = hazard.NewDomain[node[E]](hazardOpts...)

	dummy := q.newNode()
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

func (q *Queue[E]) newNode() *node[E] {
	n := q.pool.Get().(*node[E])
	n.reset()
	return n
}

func (q *Queue[E]) freeNode(n *node[E]) {
	n.reset()
	q.pool.Put(n)
}

// Handle is a goroutine's bound reclaimer for this Queue (see package doc
// comment).
type Handle[E any] struct {
	q *Queue[E]
	r *hazard.Reclaimer[node[E]]
}

// Join acquires a hazard slot for the calling goroutine and returns a
// Handle bound to it. The returned Handle must not be shared across
// goroutines, and must eventually be closed via Handle.Close.
func (q *Queue[E]) Join() *Handle[E] {
	return &Handle[E]{q: q, r: q.domain.Join()}
}

// Close drains this Handle: it blocks, yielding, until every node this
// goroutine retired has been scanned clear of hazards and reclaimed. Must
// be called exactly once, by the goroutine that owns the Handle, once it
// is done issuing operations.
func (h *Handle[E]) Close() {
	h.r.Close()
}

// Enqueue appends value to the tail using a two-phase CAS with helping:
// lock-free and total — it always eventually succeeds under bounded
// contention and never reports an error.
func (h *Handle[E]) Enqueue(value E) {
	q := h.q
	n := q.newNode()
	box := new(E)
	*box = value
	defer h.r.UnmarkHazard()

	for {
		t := h.r.Protect(&q.tail)

		if t.payload.CompareAndSwap(nil, box) {
			// We claimed this tail slot. Link our successor; if a helper
			// beat us to it, our spare node is unused and goes back to
			// the pool.
			if t.next.CompareAndSwap(nil, n) {
				q.tail.CompareAndSwap(t, n)
			} else {
				q.freeNode(n)
			}
			q.size.Add(1)
			q.enqueued.Add(1)
			return
		}

		// Another producer claimed this tail slot but may not yet have
		// linked its successor. Help: try to install our node as the
		// link, using it as the candidate successor.
		if t.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(t, n)
			// Helped successfully: our node is now in the list, so we
			// need a fresh one for our own retry.
			n = q.newNode()
		}
		// Otherwise some other helper already linked it; retry without
		// reallocating n.
	}
}

// Dequeue advances head past the dummy and returns the element that was
// there, or false if the queue was observably empty at the linearization
// point. Lock-free.
func (h *Handle[E]) Dequeue() (out E, ok bool) {
	q := h.q
	defer h.r.UnmarkHazard()

	var hd, next *node[E]
	for {
		hd = h.r.Protect(&q.head)
		if q.tail.Load() == hd {
			// head == tail: only the dummy remains.
			var zero E
			return zero, false
		}
		next = hd.next.Load()
		if q.head.CompareAndSwap(hd, next) {
			break
		}
	}

	q.size.Add(-1)

	// hd is now exclusively ours: no further protecting publication of it
	// can begin, since head no longer references it.
	payload := hd.payload.Load()
	out = *payload
	hd.payload.Store(nil)

	h.r.Retire(hd, func(n *node[E]) {
		q.freeNode(n)
	})
	q.dequeued.Add(1)

	return out, true
}

// Size returns an advisory, relaxed count of elements currently in the
// queue. Not a synchronization point.
func (q *Queue[E]) Size() int {
	return int(q.size.Load())
}

// Stats returns an advisory telemetry snapshot.
func (q *Queue[E]) Stats() Stats {
	return Stats{
		Enqueued: q.enqueued.Load(),
		Dequeued: q.dequeued.Load(),
		Size:     q.size.Load(),
	}
}

// Destroy drains all remaining elements and releases every node. The
// caller must guarantee no concurrent operation is in flight; because of
// that guarantee, Destroy bypasses hazard protection entirely and walks
// the list directly.
func (q *Queue[E]) Destroy() {
	for {
		hd := q.head.Load()
		if q.tail.Load() == hd {
			break
		}
		next := hd.next.Load()
		q.head.Store(next)
		q.size.Add(-1)
		q.dequeued.Add(1)
	}
	q.head.Store(nil)
	q.tail.Store(nil)
}

// Enqueue is a convenience wrapper that joins, enqueues, and closes a
// Handle for a single call. Prefer Join for repeated use from the same
// goroutine — every call here pays the cost of a slot acquire/release and
// a drain.
func (q *Queue[E]) Enqueue(value E) {
	h := q.Join()
	defer h.Close()
	h.Enqueue(value)
}

// Dequeue is the Handle-free convenience form of Dequeue; see Enqueue's
// doc comment for the performance caveat.
func (q *Queue[E]) Dequeue() (E, bool) {
	h := q.Join()
	defer h.Close()
	return h.Dequeue()
}
