package engine

import (
	"context"
	"encoding/hex"
	"image"
)

// Item is one entry returned by a Storage listing. ID is whatever the storage
// uses to address the item again (a filesystem path for local storage).
type Item struct {
	ID    string
	Name  string
	Size  int64
	IsDir bool
	Ext   string
}

type Storage interface {
	ListItems(ctx context.Context, prefix string) ([]Item, error)
	IsImageFile(item Item) bool
}

// Loaded is a decoded image plus what the loader learned while decoding it.
// Width and Height describe Image, i.e. the size after any downscale.
type Loaded struct {
	Image      image.Image
	Width      uint32
	Height     uint32
	FileSize   uint64
	WasResized bool
}

type Loader interface {
	LoadFromPath(ctx context.Context, path string) (*Loaded, error)
}

// Hash is a fixed-width fingerprint.
type Hash []byte

func (h Hash) Hex() string {
	return hex.EncodeToString(h)
}

type Hasher interface {
	GenerateHash(img image.Image) (Hash, error)
}

// ProgressSink receives run events. Calls are fire-and-forget and are only
// ever made from one goroutine at a time.
type ProgressSink interface {
	Started(total int)
	Progress(completed, total int)
	Error(path, message string)
	Completed(processed, errors int)
}

// ResultSink persists successful results. Finalize is called exactly once per
// run, after every batch has been stored.
type ResultSink interface {
	StoreOne(ctx context.Context, path, hash string, meta Metadata) error
	StoreBatch(ctx context.Context, entries []Entry) error
	Finalize(ctx context.Context) error
}
