package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// pipeline wires one producer, cfg.MaxConcurrentTasks workers and a single
// collector through two channels of depth cfg.ChannelBufferSize. In-flight
// images are bounded by roughly 2*depth + workers no matter how many files
// there are.
type pipeline struct {
	cfg      *Config
	loader   Loader
	hasher   Hasher
	reporter ProgressSink
	sink     ResultSink

	// called once the producer has handed off its last path
	onDrain func()
}

func (p *pipeline) run(ctx context.Context, files []string) (tally, error) {
	g, gctx := errgroup.WithContext(ctx)

	work := make(chan string, p.cfg.ChannelBufferSize)
	results := make(chan Result, p.cfg.ChannelBufferSize)
	limiter := semaphore.NewWeighted(int64(p.cfg.MaxConcurrentTasks))

	g.Go(guard("producer", func() error {
		err := produce(gctx, files, work)
		if p.onDrain != nil {
			p.onDrain()
		}
		return err
	}))

	var workers sync.WaitGroup
	for i := 0; i < p.cfg.MaxConcurrentTasks; i++ {
		w := &worker{
			id:      i,
			loader:  p.loader,
			hasher:  p.hasher,
			limiter: limiter,
			work:    work,
			results: results,
		}
		workers.Add(1)
		g.Go(guard(fmt.Sprintf("consumer %d", i), func() error {
			defer workers.Done()
			return w.run(gctx)
		}))
	}

	// results closes only after every worker is gone, so the collector sees
	// each result before it sees the end of the stream
	go func() {
		workers.Wait()
		close(results)
	}()

	var t tally
	c := &collector{
		total:     len(files),
		batchSize: p.cfg.BatchSize,
		progress:  p.cfg.EnableProgressReporting,
		reporter:  p.reporter,
		sink:      p.sink,
		results:   results,
	}
	g.Go(guard("collector", func() error {
		var err error
		t, err = c.run(gctx)
		return err
	}))

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return tally{}, Wrap(KindCanceled, "pipeline", "run canceled", ctx.Err())
		}
		return tally{}, err
	}
	if err := ctx.Err(); err != nil {
		return tally{}, Wrap(KindCanceled, "pipeline", "run canceled", err)
	}
	return t, nil
}

// guard turns a panic in one pipeline role into an infrastructure error.
func guard(role string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = NewError(KindInfrastructure, role, fmt.Sprintf("terminated abnormally: %v", r))
			}
		}()
		return fn()
	}
}
