// Package sink holds engine.ResultSink implementations that need no database.
package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/riadafridishibly/imgdedup/engine"
)

var ErrFinalized = errors.New("sink already finalized")

// JSONFile streams entries into a JSON array on disk. The array is only
// closed by Finalize; a file from an aborted run is left truncated.
type JSONFile struct {
	mu        sync.Mutex
	path      string
	f         *os.File
	w         *bufio.Writer
	count     int
	finalized bool
}

func NewJSONFile(path string) (*JSONFile, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	s := &JSONFile{path: path, f: f, w: bufio.NewWriter(f)}
	if _, err := s.w.WriteString("[\n"); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *JSONFile) Path() string {
	return s.path
}

func (s *JSONFile) StoreOne(ctx context.Context, path, hash string, meta engine.Metadata) error {
	return s.StoreBatch(ctx, []engine.Entry{{Path: path, Hash: hash, Metadata: meta}})
}

func (s *JSONFile) StoreBatch(_ context.Context, entries []engine.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}

	for _, e := range entries {
		data, err := sonic.ConfigStd.MarshalIndent(e, "  ", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.Path, err)
		}
		if s.count > 0 {
			s.w.WriteString(",\n")
		}
		s.w.WriteString("  ")
		if _, err := s.w.Write(data); err != nil {
			return err
		}
		s.count++
	}
	return s.w.Flush()
}

// Finalize closes the array and the file.
func (s *JSONFile) Finalize(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	s.finalized = true

	tail := "\n]\n"
	if s.count == 0 {
		tail = "]\n"
	}
	if _, err := s.w.WriteString(tail); err != nil {
		s.f.Close()
		return err
	}
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// Close releases the file without closing the array. It is a no-op after
// Finalize.
func (s *JSONFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return nil
	}
	s.finalized = true
	s.w.Flush()
	return s.f.Close()
}
