package hazard

import (
	"runtime"
	"sync/atomic"
)

// retireRecord pairs a detached pointer with the function that reclaims it.
// Reclamation is usually "return this node to a sync.Pool" rather than a
// literal free, since Go's own GC already owns the underlying memory; the
// hazard here guards against a pooled node being reused while another
// goroutine still holds a reference to it, not against use-after-free.
type retireRecord[T any] struct {
	ptr     *T
	deleter func(*T)
}

// Reclaimer is a single goroutine's reclamation state: a reference to its
// hazard slot, plus a retire set staged for deferred deletion. A Reclaimer
// must only be used by the goroutine that obtained it from Domain.Join, and
// must not be reused after Close.
type Reclaimer[T any] struct {
	domain  *Domain[T]
	slot    *slot[T]
	retired []retireRecord[T]
	closed  bool
}

// MarkHazard publishes p in this goroutine's slot so concurrent scanners
// observe it. Must be paired with UnmarkHazard (or another MarkHazard/
// Protect call) once the pointer no longer needs protection.
func (r *Reclaimer[T]) MarkHazard(p *T) {
	r.slot.hazard.Store(p)
}

// UnmarkHazard clears this goroutine's published hazard.
func (r *Reclaimer[T]) UnmarkHazard() {
	r.slot.hazard.Store(nil)
}

// Protect repeatedly loads src, publishes the loaded value as this
// goroutine's hazard, then re-loads src and compares. On match, the
// returned pointer is guaranteed stable until the next hazard update — any
// retire of it that a scan could observe must happen-after this
// publication.
func (r *Reclaimer[T]) Protect(src *atomic.Pointer[T]) *T {
	for {
		p := src.Load()
		r.MarkHazard(p)
		if q := src.Load(); q == p {
			return p
		}
	}
}

// Retire appends {p, deleter} to this goroutine's retire set and
// opportunistically scans if the set has grown past the threshold. Must
// only be called by the goroutine that logically removed p from the
// structure, once no further protecting publication of p can begin (i.e.
// after the CAS that detached it has been observed to succeed).
func (r *Reclaimer[T]) Retire(p *T, deleter func(*T)) {
	r.retired = append(r.retired, retireRecord[T]{ptr: p, deleter: deleter})
	if len(r.retired) > r.domain.scanThreshold() {
		r.scan()
	}
}

// scan builds the set of currently-published hazards and deletes every
// staged record whose pointer is absent from it. Records still hazarded
// remain staged for a later scan.
func (r *Reclaimer[T]) scan() {
	if len(r.retired) == 0 {
		return
	}
	hazards := r.domain.registry.snapshot()
	kept := r.retired[:0]
	deleted := 0
	for _, rec := range r.retired {
		if _, hazarded := hazards[rec.ptr]; hazarded {
			kept = append(kept, rec)
			continue
		}
		rec.deleter(rec.ptr)
		deleted++
	}
	r.retired = kept
	if deleted > 0 {
		r.domain.logger.Debug("hazard: scan reclaimed records", map[string]any{
			"deleted":  deleted,
			"retained": len(r.retired),
		})
	}
}

// Close checks that no hazard is left published (logging a warning if one
// is, without panicking), releases the slot back to the
// registry's free pool (the slot itself is never deallocated), then
// busy-wait-yield drains every remaining retire record. This is the only
// operation in the package that blocks. Go has no goroutine-exit hook, so
// callers must invoke this explicitly when a goroutine is done using its
// Reclaimer.
func (r *Reclaimer[T]) Close() {
	if r.closed {
		r.domain.logger.Warn("hazard: Close called twice on the same Reclaimer", nil)
		return
	}
	if p := r.slot.hazard.Load(); p != nil {
		r.domain.logger.Warn("hazard: Close called with a hazard still marked", map[string]any{
			"pointer": p,
		})
	}
	r.domain.registry.release(r.slot)
	for len(r.retired) > 0 {
		r.scan()
		if len(r.retired) > 0 {
			runtime.Gosched()
		}
	}
	r.closed = true
}
