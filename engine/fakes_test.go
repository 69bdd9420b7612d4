package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type fakeStorage struct {
	items []Item
	err   error
	calls atomic.Int32
}

func (s *fakeStorage) ListItems(_ context.Context, _ string) ([]Item, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *fakeStorage) IsImageFile(item Item) bool {
	switch strings.ToLower(item.Ext) {
	case "jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp":
		return true
	}
	return false
}

func filesStorage(paths ...string) *fakeStorage {
	s := &fakeStorage{}
	for _, p := range paths {
		s.items = append(s.items, Item{
			ID:   p,
			Name: filepath.Base(p),
			Ext:  strings.TrimPrefix(filepath.Ext(p), "."),
		})
	}
	return s
}

// fakeLoader fails for paths containing "corrupt", panics for "panic", and
// blocks on ctx for "block". It records the peak number of concurrent calls.
type fakeLoader struct {
	delay time.Duration

	inflight atomic.Int64
	peak     atomic.Int64
	started  atomic.Int64

	// if set, called at the start of every load
	onLoad func()
}

func (l *fakeLoader) LoadFromPath(ctx context.Context, path string) (*Loaded, error) {
	n := l.inflight.Add(1)
	defer l.inflight.Add(-1)
	l.started.Add(1)
	for {
		p := l.peak.Load()
		if n <= p || l.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if l.onLoad != nil {
		l.onLoad()
	}

	if l.delay > 0 {
		time.Sleep(l.delay)
	}

	base := filepath.Base(path)
	switch {
	case strings.Contains(base, "corrupt"):
		return nil, fmt.Errorf("decode %s: %w", path, errors.New("png: invalid format: not a PNG file"))
	case strings.Contains(base, "panic"):
		panic("decoder blew up")
	case strings.Contains(base, "block"):
		<-ctx.Done()
		return nil, ctx.Err()
	}

	return &Loaded{
		Image:    image.NewGray(image.Rect(0, 0, 1, 1)),
		Width:    1,
		Height:   1,
		FileSize: 67,
	}, nil
}

type fakeHasher struct {
	err error
}

func (h *fakeHasher) GenerateHash(img image.Image) (Hash, error) {
	if h.err != nil {
		return nil, h.err
	}
	b := img.Bounds()
	return Hash{0xde, 0xad, byte(b.Dx()), byte(b.Dy()), 0, 0, 0, 1}, nil
}

type errorCall struct {
	path    string
	message string
}

type recordingReporter struct {
	mu        sync.Mutex
	started   []int
	completed [][2]int
	errors    []errorCall
	progress  int

	lastCompleted atomic.Int64
}

func (r *recordingReporter) Started(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, total)
}

func (r *recordingReporter) Progress(completed, _ int) {
	r.lastCompleted.Store(int64(completed))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress++
}

func (r *recordingReporter) Error(path, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, errorCall{path: path, message: message})
}

func (r *recordingReporter) Completed(processed, errors int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, [2]int{processed, errors})
}

type memorySink struct {
	mu            sync.Mutex
	entries       []Entry
	batches       []int
	finalizeCalls int

	batchErr    error
	finalizeErr error
}

func (s *memorySink) StoreOne(ctx context.Context, path, hash string, meta Metadata) error {
	return s.StoreBatch(ctx, []Entry{{Path: path, Hash: hash, Metadata: meta}})
}

func (s *memorySink) StoreBatch(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchErr != nil {
		return s.batchErr
	}
	s.entries = append(s.entries, entries...)
	s.batches = append(s.batches, len(entries))
	return nil
}

func (s *memorySink) Finalize(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizeCalls++
	return s.finalizeErr
}

func numberedFiles(dir, prefix string, n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("%s%04d.png", prefix, i))
	}
	return paths
}
