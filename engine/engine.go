// Package engine discovers image files, fingerprints them on a bounded pool of
// workers and hands the results to a sink in batches.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

type State int32

const (
	StateIdle State = iota
	StateDiscovering
	StateDispatching
	StateDraining
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateDispatching:
		return "dispatching"
	case StateDraining:
		return "draining"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Engine runs one directory at a time. Use separate engines to process
// directories in parallel.
type Engine struct {
	storage Storage
	loader  Loader
	hasher  Hasher

	running atomic.Bool
	state   atomic.Int32
}

func New(storage Storage, loader Loader, hasher Hasher) *Engine {
	return &Engine{
		storage: storage,
		loader:  loader,
		hasher:  hasher,
	}
}

func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// ProcessDirectory fingerprints every image under path and persists the
// results through sink. It returns either a complete summary or an error,
// never both. Per-file failures do not fail the run; they are reported to
// reporter and counted in Summary.ErrorCount.
func (e *Engine) ProcessDirectory(ctx context.Context, path string, cfg *Config, reporter ProgressSink, sink ResultSink) (*Summary, error) {
	if cfg == nil {
		return nil, Wrap(KindConfig, "process directory", "no processing config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, Wrap(KindConfig, "process directory", "no result sink", ErrInvalidConfig)
	}
	if reporter == nil {
		reporter = nopReporter{}
	}

	if !e.running.CompareAndSwap(false, true) {
		return nil, NewError(KindInfrastructure, "process directory", "engine is already running")
	}
	defer e.running.Store(false)

	summary, err := e.run(ctx, path, cfg, reporter, sink)
	if err != nil {
		e.setState(StateFailed)
		log.Printf("Run over %s failed: %v", path, err)
		return nil, err
	}
	e.setState(StateDone)
	return summary, nil
}

func (e *Engine) run(ctx context.Context, path string, cfg *Config, reporter ProgressSink, sink ResultSink) (*Summary, error) {
	start := time.Now()

	e.setState(StateDiscovering)
	files, err := Discover(ctx, e.storage, path)
	if err != nil {
		return nil, err
	}
	log.Printf("Discovered %d image files under %s", len(files), path)

	if cfg.EnableProgressReporting {
		reporter.Started(len(files))
	}

	e.setState(StateDispatching)
	p := &pipeline{
		cfg:      cfg,
		loader:   e.loader,
		hasher:   e.hasher,
		reporter: reporter,
		sink:     sink,
		onDrain:  func() { e.state.CompareAndSwap(int32(StateDispatching), int32(StateDraining)) },
	}
	t, err := p.run(ctx, files)
	if err != nil {
		return nil, err
	}

	e.setState(StateFinalizing)
	elapsed := uint64(time.Since(start).Milliseconds())
	summary := &Summary{
		TotalFiles:            len(files),
		ProcessedFiles:        t.processed,
		ErrorCount:            t.errors,
		TotalProcessingTimeMs: elapsed,
	}
	if t.processed > 0 {
		summary.AverageTimePerFileMs = float64(elapsed) / float64(t.processed)
	}

	if cfg.EnableProgressReporting {
		reporter.Completed(t.processed, t.errors)
	}

	if err := sink.Finalize(ctx); err != nil {
		return nil, Wrap(KindPersistence, "finalize", "cannot finalize results", err)
	}

	log.Printf("Processed %d/%d files under %s (%d errors) in %dms",
		summary.ProcessedFiles, summary.TotalFiles, path, summary.ErrorCount, summary.TotalProcessingTimeMs)
	return summary, nil
}

type nopReporter struct{}

func (nopReporter) Started(int)          {}
func (nopReporter) Progress(int, int)    {}
func (nopReporter) Error(string, string) {}
func (nopReporter) Completed(int, int)   {}
