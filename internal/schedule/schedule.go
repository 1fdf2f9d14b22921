// Package schedule runs per-chunk work on a bounded worker pool and hands the
// results back strictly in chunk order.
//
// Workers may finish in any order. Early results wait in a reorder Window; the
// number of results that are dispatched but not yet delivered is capped, which
// bounds memory to roughly window * chunk size.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrScheduler wraps any failure of a chunk's work or delivery.
var ErrScheduler = errors.New("scheduler error")

// WorkFunc processes a single chunk. It runs concurrently with other chunks.
type WorkFunc func(ctx context.Context, chunk Chunk) ([]byte, error)

// DeliverFunc consumes a result. It is called from one goroutine, in chunk order.
type DeliverFunc func(result Result) error

// Scheduler dispatches the chunks of a Plan.
type Scheduler struct {
	plan    Plan
	workers int
	window  int
}

// New returns a scheduler running at most workers chunks at once.
// Values below one are treated as one.
func New(plan Plan, workers int) *Scheduler {
	workers = max(workers, 1)

	return &Scheduler{
		plan:    plan,
		workers: workers,
		window:  2 * workers, //nolint:mnd
	}
}

// WithWindow sets how many results may be outstanding (dispatched but not delivered).
// It never drops below the worker count.
func (s *Scheduler) WithWindow(window int) *Scheduler {
	s.window = max(window, s.workers)

	return s
}

// Run processes every chunk with work and passes the results to deliver in index order.
// The first error cancels all remaining work and is returned.
//
//nolint:gocognit
func (s *Scheduler) Run(ctx context.Context, work WorkFunc, deliver DeliverFunc) error {
	count := s.plan.Count()
	if count == 0 {
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)

	slots := semaphore.NewWeighted(int64(s.window))
	results := make(chan Result, s.window)

	// Dispatcher: hands chunks to the pool in index order.
	group.Go(func() error {
		defer close(results)

		workers, wctx := errgroup.WithContext(ctx)
		workers.SetLimit(s.workers)

		var acquireErr error

		for i := range count {
			if acquireErr = slots.Acquire(wctx, 1); acquireErr != nil {
				break
			}

			chunk := s.plan.Chunk(i)

			workers.Go(func() error {
				data, err := work(wctx, chunk)
				if err != nil {
					return fmt.Errorf("%w: chunk %d: %w", ErrScheduler, chunk.Index, err)
				}

				select {
				case results <- Result{Chunk: chunk, Data: data}:
					return nil
				case <-wctx.Done():
					return wctx.Err()
				}
			})
		}

		if err := workers.Wait(); err != nil {
			return err
		}

		return acquireErr
	})

	// Collector: reorders and delivers.
	group.Go(func() error {
		window := NewWindow()

		for res := range results {
			window.Push(res)

			for {
				next, ok := window.Pop()
				if !ok {
					break
				}

				if err := deliver(next); err != nil {
					return fmt.Errorf("%w: delivering chunk %d: %w", ErrScheduler, next.Chunk.Index, err)
				}

				slots.Release(1)
			}
		}

		// An incomplete delivery means the dispatcher failed and reports the cause.
		return nil
	})

	if err := group.Wait(); err != nil {
		if errors.Is(err, ErrScheduler) {
			return err
		}

		return fmt.Errorf("%w: %w", ErrScheduler, err)
	}

	return nil
}
