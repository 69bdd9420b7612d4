package sink

import (
	"context"
	"errors"

	"github.com/riadafridishibly/imgdedup/engine"
)

type multi []engine.ResultSink

// Multi fans every call out to all sinks in order. StoreBatch stops at the
// first failure; Finalize reaches every sink and joins their errors.
func Multi(sinks ...engine.ResultSink) engine.ResultSink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return multi(sinks)
}

func (m multi) StoreOne(ctx context.Context, path, hash string, meta engine.Metadata) error {
	for _, s := range m {
		if err := s.StoreOne(ctx, path, hash, meta); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) StoreBatch(ctx context.Context, entries []engine.Entry) error {
	for _, s := range m {
		if err := s.StoreBatch(ctx, entries); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Finalize(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Finalize(ctx))
	}
	return errors.Join(errs...)
}
