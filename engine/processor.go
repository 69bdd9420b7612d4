package engine

import (
	"context"
	"fmt"
	"time"
)

// Process fingerprints a single file. It never fails: loader and hasher
// errors come back as an Error result carrying the full error chain.
// Process holds no state of its own and is safe to call from many goroutines.
func Process(ctx context.Context, loader Loader, hasher Hasher, path string) Result {
	start := time.Now()

	loaded, err := loader.LoadFromPath(ctx, path)
	if err != nil {
		return Result{Path: path, Err: err.Error()}
	}
	if loaded == nil || loaded.Image == nil {
		return Result{Path: path, Err: fmt.Sprintf("loader returned no image for %s", path)}
	}

	hash, err := hasher.GenerateHash(loaded.Image)
	if err != nil {
		return Result{Path: path, Err: fmt.Sprintf("hash %s: %v", path, err)}
	}

	return Result{
		Path: path,
		Hash: hash.Hex(),
		Metadata: Metadata{
			FileSize:         loaded.FileSize,
			ProcessingTimeMs: uint64(time.Since(start).Milliseconds()),
			Width:            loaded.Width,
			Height:           loaded.Height,
			WasResized:       loaded.WasResized,
		},
	}
}
