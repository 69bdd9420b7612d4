package engine

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// worker pulls paths until the work channel is closed and drained. The
// semaphore, not the number of workers, is what caps concurrent Process
// calls; the pool happens to be the same size today.
type worker struct {
	id      int
	loader  Loader
	hasher  Hasher
	limiter *semaphore.Weighted
	work    <-chan string
	results chan<- Result
}

func (w *worker) run(ctx context.Context) error {
	for {
		var path string
		select {
		case p, ok := <-w.work:
			if !ok {
				return nil
			}
			path = p
		case <-ctx.Done():
			return nil
		}

		result, ok := w.process(ctx, path)
		if !ok {
			return nil
		}

		select {
		case w.results <- result:
		case <-ctx.Done():
			return nil
		}
	}
}

// process holds one permit for the duration of the call. ok is false when the
// run was stopped before a permit became available.
func (w *worker) process(ctx context.Context, path string) (Result, bool) {
	if err := w.limiter.Acquire(ctx, 1); err != nil {
		return Result{}, false
	}
	defer w.limiter.Release(1)

	return Process(ctx, w.loader, w.hasher, path), true
}
