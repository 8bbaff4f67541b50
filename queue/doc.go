// Package queue implements a lock-free, unbounded, multi-producer /
// multi-consumer FIFO queue: a Michael & Scott variant with an
// always-present dummy head node and a two-phase, helping-protocol
// enqueue. Memory safety for nodes detached by Dequeue is provided by
// github.com/joeycumines/lfqueue/hazard.
//
// Queue[E] exposes Enqueue, Dequeue, Size, and Destroy. It also exposes
// Join, which hands back a Handle bound to the calling goroutine: Go
// goroutines have no thread-local storage, so a goroutine that intends to
// make repeated calls acquires a Handle once and closes it explicitly when
// done, rather than relying on an automatic per-thread destructor. Queue's
// own Enqueue/Dequeue methods are a convenience that join, operate, and
// close a Handle per call, for callers that don't need that control.
package queue
