package hazard

import "sync/atomic"

// slot is one entry in the hazard slot registry: a claim flag and a single
// published hazard pointer. Slots are never deallocated once linked; only
// the claim flag toggles across acquire/release cycles.
type slot[T any] struct {
	claimed atomic.Bool
	hazard  atomic.Pointer[T]
	next    atomic.Pointer[slot[T]]
}

// registry is a grow-only, per-Domain singly-linked list of hazard slots.
// It never shrinks; nodes live until the Domain itself is garbage collected.
type registry[T any] struct {
	head  atomic.Pointer[slot[T]]
	count atomic.Int64 // H, the current registry size
}

// acquire returns the first slot whose claim flag can be atomically set from
// clear to set, allocating and prepending a new one if none is free. Never
// fails.
func (r *registry[T]) acquire() *slot[T] {
	for s := r.head.Load(); s != nil; s = s.next.Load() {
		if s.claimed.CompareAndSwap(false, true) {
			return s
		}
	}

	s := new(slot[T])
	s.claimed.Store(true)
	for {
		head := r.head.Load()
		s.next.Store(head)
		if r.head.CompareAndSwap(head, s) {
			r.count.Add(1)
			return s
		}
	}
}

// release stores nil into the slot's hazard pointer and clears the claim
// flag. The slot itself is never unlinked; it simply becomes available for
// the next acquire.
func (r *registry[T]) release(s *slot[T]) {
	s.hazard.Store(nil)
	s.claimed.Store(false)
}

// size returns the current registry size H, used to scale the scan
// threshold K*H.
func (r *registry[T]) size() int64 {
	return r.count.Load()
}

// snapshot walks the registry and collects every currently-published
// non-null hazard pointer. Concurrent acquires may append new slots after
// the walk starts; a scan is allowed to miss those, since a newly joined
// goroutine cannot yet be hazarding a pointer this scan cares about — it
// has not had the chance to Protect anything retired before the scan
// began.
func (r *registry[T]) snapshot() map[*T]struct{} {
	out := make(map[*T]struct{})
	for s := r.head.Load(); s != nil; s = s.next.Load() {
		if p := s.hazard.Load(); p != nil {
			out[p] = struct{}{}
		}
	}
	return out
}
