// Package pipeline wires queue.Queue into the kind of higher-level system
// it's meant to sit underneath: worker pools, event pipelines, telemetry
// buffers. It adds nothing to the queue's own operation set — bounded
// capacity, priority, iteration, peek, and bulk drain remain out of scope
// for queue.Queue itself; everything here is a consumer built on top of the
// unchanged queue API.
//
// Pipeline combines:
//   - github.com/joeycumines/go-catrate, as optional per-category admission
//     control in front of Enqueue (so a runaway producer can't overwhelm
//     consumers downstream of the lock-free queue);
//   - github.com/joeycumines/go-microbatch, to turn the queue's one-at-a-
//     time Dequeue into size/time-bounded batches for a downstream sink;
//   - github.com/joeycumines/go-longpoll, bridged onto the queue via a
//     single forwarding goroutine per consumer group, to give callers a
//     bounded blocking "wait for at least N items or T duration" read —
//     the one place in this package a goroutine parks on a channel instead
//     of spinning against the lock-free queue.
package pipeline
