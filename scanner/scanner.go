// Package scanner lists image files on the local filesystem.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/riadafridishibly/imgdedup/engine"
)

var imageExts = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tiff": {},
	"webp": {},
}

// Local is an engine.Storage over a directory tree. With Recursive unset only
// the direct children of the root are listed.
type Local struct {
	Recursive bool

	// Walk workers, defaults to runtime.NumCPU()
	NumWorkers int
}

func NewLocal(recursive bool) *Local {
	return &Local{Recursive: recursive}
}

func (l *Local) ListItems(ctx context.Context, root string) ([]engine.Item, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	if !l.Recursive {
		return l.listFlat(ctx, root)
	}
	return l.walk(ctx, root)
}

func (l *Local) listFlat(ctx context.Context, root string) ([]engine.Item, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	items := make([]engine.Item, 0, len(entries))
	for _, d := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := toItem(filepath.Join(root, d.Name()), d)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (l *Local) walk(ctx context.Context, root string) ([]engine.Item, error) {
	workers := l.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	conf := fastwalk.Config{Follow: false, NumWorkers: workers}

	var (
		mu    sync.Mutex
		items []engine.Item
	)

	// walkFn runs on several goroutines at once
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		item, err := toItem(path, d)
		if err != nil {
			return err
		}

		mu.Lock()
		items = append(items, item)
		mu.Unlock()
		return nil
	}

	if err := fastwalk.Walk(&conf, root, walkFn); err != nil {
		return nil, err
	}
	return items, nil
}

func toItem(path string, d fs.DirEntry) (engine.Item, error) {
	item := engine.Item{
		ID:    path,
		Name:  d.Name(),
		IsDir: d.IsDir(),
		Ext:   strings.TrimPrefix(filepath.Ext(d.Name()), "."),
	}
	if item.IsDir {
		return item, nil
	}

	info, err := d.Info()
	if err != nil {
		return item, err
	}
	item.Size = info.Size()
	return item, nil
}

// IsImageFile matches the item's extension against the formats the loader
// can decode, ignoring case.
func (l *Local) IsImageFile(item engine.Item) bool {
	_, ok := imageExts[strings.ToLower(item.Ext)]
	return ok
}
