package sink

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/riadafridishibly/imgdedup/engine"
	"github.com/riadafridishibly/imgdedup/imageload"
	"github.com/riadafridishibly/imgdedup/phash"
	"github.com/riadafridishibly/imgdedup/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []engine.Entry {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []engine.Entry
	require.NoError(t, sonic.ConfigStd.Unmarshal(data, &entries), string(data))
	return entries
}

func TestJSONFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "hashes.json")
	s, err := NewJSONFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Finalize(context.Background()))

	entries := readEntries(t, path)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestJSONFile_Batches(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hashes.json")
	s, err := NewJSONFile(path)
	require.NoError(t, err)

	meta := engine.Metadata{FileSize: 10, Width: 2, Height: 3, WasResized: true}
	require.NoError(t, s.StoreBatch(ctx, []engine.Entry{
		{Path: "/a.png", Hash: "00ff", Metadata: meta},
		{Path: "/b.png", Hash: "ff00", Metadata: meta},
	}))
	require.NoError(t, s.StoreOne(ctx, "/c.png", "0f0f", meta))
	require.NoError(t, s.Finalize(ctx))

	entries := readEntries(t, path)
	require.Len(t, entries, 3)
	assert.Equal(t, "/a.png", entries[0].Path)
	assert.Equal(t, "0f0f", entries[2].Hash)
	assert.Equal(t, meta, entries[1].Metadata)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file_path": "/a.png"`)
	assert.Contains(t, string(data), `"was_resized": true`)
}

func TestJSONFile_FinalizeOnce(t *testing.T) {
	ctx := context.Background()
	s, err := NewJSONFile(filepath.Join(t.TempDir(), "hashes.json"))
	require.NoError(t, err)

	require.NoError(t, s.Finalize(ctx))
	assert.ErrorIs(t, s.Finalize(ctx), ErrFinalized)
	assert.ErrorIs(t, s.StoreOne(ctx, "/a.png", "00", engine.Metadata{}), ErrFinalized)
	assert.NoError(t, s.Close())
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.StoreOne(ctx, "/a.png", "01", engine.Metadata{}))
	require.NoError(t, m.StoreBatch(ctx, []engine.Entry{{Path: "/b.png", Hash: "02"}}))
	assert.False(t, m.Finalized())

	got := m.Entries()
	got[0].Path = "mutated"
	assert.Equal(t, "/a.png", m.Entries()[0].Path)
	assert.Equal(t, 2, m.Batches())

	require.NoError(t, m.Finalize(ctx))
	assert.True(t, m.Finalized())
	assert.Equal(t, 1, m.FinalizeCalls())
}

func writeImage(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			img.SetGray(x, y, color.Gray{Y: shade + uint8(x)})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestJSONFile_EngineRun(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.png"), 10)
	writeImage(t, filepath.Join(dir, "b.png"), 100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.png"), []byte("corrupt"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644))

	hasher, err := phash.New("dct", phash.DefaultSize)
	require.NoError(t, err)
	e := engine.New(scanner.NewLocal(true), imageload.New(0), hasher)

	out := filepath.Join(dir, "out.json")
	s, err := NewJSONFile(out)
	require.NoError(t, err)

	cfg := engine.DefaultConfig()
	cfg.BatchSize = 1
	summary, err := e.ProcessDirectory(context.Background(), dir, &cfg, nil, s)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 2, summary.ProcessedFiles)
	assert.Equal(t, 1, summary.ErrorCount)

	entries := readEntries(t, out)
	require.Len(t, entries, 2)
	paths := []string{entries[0].Path, entries[1].Path}
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, paths)
	for _, e := range entries {
		assert.Len(t, e.Hash, 16)
		assert.Equal(t, uint32(32), e.Metadata.Width)
	}
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemory(), NewMemory()
	m := Multi(a, b)

	require.NoError(t, m.StoreBatch(ctx, []engine.Entry{{Path: "/a.png", Hash: "01"}}))
	require.NoError(t, m.StoreOne(ctx, "/b.png", "02", engine.Metadata{}))
	require.NoError(t, m.Finalize(ctx))

	for _, s := range []*Memory{a, b} {
		assert.Len(t, s.Entries(), 2)
		assert.Equal(t, 1, s.FinalizeCalls())
	}

	assert.Same(t, a, Multi(a))
}

func TestMulti_FinalizeReachesAll(t *testing.T) {
	ctx := context.Background()
	js, err := NewJSONFile(filepath.Join(t.TempDir(), "hashes.json"))
	require.NoError(t, err)
	require.NoError(t, js.Finalize(ctx))

	mem := NewMemory()
	err = Multi(js, mem).Finalize(ctx)
	assert.ErrorIs(t, err, ErrFinalized)
	assert.True(t, mem.Finalized())
}
