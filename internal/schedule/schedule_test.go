package schedule_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/idelchi/obxr/internal/schedule"
)

func mustPlan(t *testing.T, length int64, chunkSize int) schedule.Plan {
	t.Helper()

	plan, err := schedule.NewPlan(length, chunkSize)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	return plan
}

func TestRunDeliversInOrder(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 2, 4, 8} {
		plan := mustPlan(t, 1000, 7)

		var inFlight, peak atomic.Int64

		work := func(_ context.Context, c schedule.Chunk) ([]byte, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)

			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}

			time.Sleep(time.Duration(rand.IntN(200)) * time.Microsecond) //nolint:gosec

			return []byte{byte(c.Index)}, nil
		}

		var delivered []int

		deliver := func(r schedule.Result) error {
			if int(r.Data[0]) != r.Chunk.Index%256 {
				t.Errorf("chunk %d carried data of another chunk", r.Chunk.Index)
			}

			delivered = append(delivered, r.Chunk.Index)

			return nil
		}

		if err := schedule.New(plan, workers).Run(context.Background(), work, deliver); err != nil {
			t.Fatalf("workers=%d: Run: %v", workers, err)
		}

		if len(delivered) != plan.Count() {
			t.Fatalf("workers=%d: delivered %d of %d", workers, len(delivered), plan.Count())
		}

		for i, idx := range delivered {
			if idx != i {
				t.Fatalf("workers=%d: delivery %d was chunk %d", workers, i, idx)
			}
		}

		if p := peak.Load(); p > int64(workers) {
			t.Fatalf("workers=%d: %d chunks ran concurrently", workers, p)
		}
	}
}

func TestRunEmptyPlan(t *testing.T) {
	t.Parallel()

	called := false

	err := schedule.New(mustPlan(t, 0, 64), 4).Run(context.Background(),
		func(context.Context, schedule.Chunk) ([]byte, error) {
			called = true

			return nil, nil
		},
		func(schedule.Result) error {
			called = true

			return nil
		})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if called {
		t.Fatal("work or deliver called for an empty plan")
	}
}

func TestRunWorkErrorCancels(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	plan := mustPlan(t, 1<<20, 64)

	var started atomic.Int64

	work := func(ctx context.Context, c schedule.Chunk) ([]byte, error) {
		started.Add(1)

		if c.Index == 3 {
			return nil, errBoom
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}

		return nil, nil
	}

	var delivered []int

	err := schedule.New(plan, 4).Run(context.Background(), work, func(r schedule.Result) error {
		delivered = append(delivered, r.Chunk.Index)

		return nil
	})

	if !errors.Is(err, errBoom) || !errors.Is(err, schedule.ErrScheduler) {
		t.Fatalf("error = %v, want wrapped %v", err, errBoom)
	}

	if n := started.Load(); n >= int64(plan.Count()) {
		t.Fatalf("all %d chunks started despite the failure", n)
	}

	for i, idx := range delivered {
		if idx != i || idx >= 3 {
			t.Fatalf("delivered %v after failing chunk 3", delivered)
		}
	}
}

func TestRunDeliverErrorStops(t *testing.T) {
	t.Parallel()

	errStop := errors.New("stop")
	plan := mustPlan(t, 1<<16, 64)

	var delivered atomic.Int64

	err := schedule.New(plan, 2).Run(context.Background(),
		func(context.Context, schedule.Chunk) ([]byte, error) { return nil, nil },
		func(r schedule.Result) error {
			delivered.Add(1)

			if r.Chunk.Index == 5 {
				return errStop
			}

			return nil
		})

	if !errors.Is(err, errStop) {
		t.Fatalf("error = %v, want %v", err, errStop)
	}

	if n := delivered.Load(); n != 6 {
		t.Fatalf("deliver called %d times, want 6", n)
	}
}

func TestRunParentCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := schedule.New(mustPlan(t, 1024, 64), 2).Run(ctx,
		func(ctx context.Context, _ schedule.Chunk) ([]byte, error) { return nil, ctx.Err() },
		func(schedule.Result) error { return nil })

	if !errors.Is(err, schedule.ErrScheduler) || !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want wrapped %v", err, context.Canceled)
	}
}

func TestRunBoundsOutstandingResults(t *testing.T) {
	t.Parallel()

	plan := mustPlan(t, 64*64, 64)
	release := make(chan struct{})

	var dispatched atomic.Int64

	work := func(_ context.Context, c schedule.Chunk) ([]byte, error) {
		dispatched.Add(1)

		// Chunk 0 is held back, so everything else piles up in the window.
		if c.Index == 0 {
			<-release
		}

		return nil, nil
	}

	done := make(chan error, 1)

	go func() {
		done <- schedule.New(plan, 2).WithWindow(5).Run(context.Background(), work,
			func(schedule.Result) error { return nil })
	}()

	time.Sleep(50 * time.Millisecond)

	if n := dispatched.Load(); n > 5 {
		t.Fatalf("%d chunks dispatched while chunk 0 was pending, window is 5", n)
	}

	close(release)

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := dispatched.Load(); n != int64(plan.Count()) {
		t.Fatalf("dispatched %d of %d", n, plan.Count())
	}
}
