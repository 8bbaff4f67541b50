// Command lfqueue-demo runs a multi-producer workload, drained by a single
// batching consumer, against the lock-free queue — the kind of worker-pool / telemetry-buffer
// use case the queue and pipeline packages are built for. It exists purely
// to exercise the library end-to-end under real concurrency.
package main

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-microbatch"
	"github.com/joeycumines/lfqueue/logging"
	"github.com/joeycumines/lfqueue/pipeline"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
)

const (
	producers     = 4
	perProducer   = 250_000
	totalValues   = producers * perProducer
	batchMaxSize  = 256
	batchInterval = 10 * time.Millisecond
)

func main() {
	// Ensure GOMAXPROCS reflects the container's CPU quota, not the host's
	// visible core count, before spinning up producer/consumer goroutines.
	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Printf("lfqueue-demo: maxprocs.Set: %v", err)
	}

	logger := logging.New(nil)

	p := pipeline.New[int64](map[time.Duration]int{
		time.Second: 10_000_000,
	})

	var delivered atomic.Int64
	complete := make(chan struct{})

	process := func(_ context.Context, jobs []int64) error {
		if delivered.Add(int64(len(jobs))) >= totalValues {
			select {
			case <-complete:
			default:
				close(complete)
			}
		}
		return nil
	}

	consumer := pipeline.NewConsumer[int64](p.Queue, &microbatch.BatcherConfig{
		MaxSize:       batchMaxSize,
		FlushInterval: batchInterval,
	}, process)
	defer consumer.Close()

	var g errgroup.Group
	start := time.Now()
	for i := 0; i < producers; i++ {
		i := i
		g.Go(func() error {
			h := p.Queue.Join()
			defer h.Close()
			base := int64(i) * perProducer
			for j := int64(0); j < perProducer; j++ {
				h.Enqueue(base + j)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("lfqueue-demo: producers failed: %v", err)
	}

	<-complete
	elapsed := time.Since(start)

	stats := p.Queue.Stats()
	logger.Debug("lfqueue-demo: run complete", map[string]any{
		"elapsed":  elapsed.String(),
		"enqueued": stats.Enqueued,
		"dequeued": stats.Dequeued,
		"size":     stats.Size,
	})
	fmt.Printf("enqueued=%d dequeued=%d size=%d elapsed=%s\n", stats.Enqueued, stats.Dequeued, stats.Size, elapsed)
}
