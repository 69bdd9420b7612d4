package engine

import (
	"context"
	"fmt"
	"log"
)

// tally is owned by the collector goroutine and handed back by value when it
// returns, so nothing else ever reads it mid-run.
type tally struct {
	processed int
	errors    int
}

type collector struct {
	total     int
	batchSize int
	progress  bool
	reporter  ProgressSink
	sink      ResultSink
	results   <-chan Result
}

func (c *collector) run(ctx context.Context) (tally, error) {
	var t tally
	batch := make([]Entry, 0, c.batchSize)

	for {
		var result Result
		select {
		case r, ok := <-c.results:
			if !ok {
				if err := c.flush(ctx, batch); err != nil {
					return t, err
				}
				return t, nil
			}
			result = r
		case <-ctx.Done():
			return t, ctx.Err()
		}

		if result.OK() {
			batch = append(batch, Entry{Path: result.Path, Hash: result.Hash, Metadata: result.Metadata})
			t.processed++
			if len(batch) >= c.batchSize {
				if err := c.flush(ctx, batch); err != nil {
					return t, err
				}
				// sinks may keep the slice they were given
				batch = make([]Entry, 0, c.batchSize)
			}
		} else {
			c.reporter.Error(result.Path, result.Err)
			t.errors++
		}

		if c.progress {
			c.reporter.Progress(t.processed+t.errors, c.total)
		}
	}
}

func (c *collector) flush(ctx context.Context, batch []Entry) error {
	if len(batch) == 0 {
		return nil
	}
	if err := c.sink.StoreBatch(ctx, batch); err != nil {
		log.Printf("Failed to store batch of %d entries: %v", len(batch), err)
		return Wrap(KindPersistence, "store batch", fmt.Sprintf("cannot store %d entries", len(batch)), err)
	}
	return nil
}
