// Package imageload decodes image files for hashing.
package imageload

import (
	"bufio"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/riadafridishibly/imgdedup/engine"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Loader decodes any format registered with the image package. With
// MaxDimension set, larger images are scaled down so their longer side equals
// MaxDimension, keeping the aspect ratio.
type Loader struct {
	MaxDimension uint32
}

func New(maxDimension uint32) *Loader {
	return &Loader{MaxDimension: maxDimension}
}

func (l *Loader) LoadFromPath(ctx context.Context, path string) (*engine.Loaded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	loaded := &engine.Loaded{Image: img, FileSize: uint64(info.Size())}
	loaded.Image, loaded.WasResized = l.fit(img)

	b := loaded.Image.Bounds()
	loaded.Width = uint32(b.Dx())
	loaded.Height = uint32(b.Dy())
	if loaded.Width == 0 || loaded.Height == 0 {
		return nil, fmt.Errorf("decode %s: empty %s image", path, format)
	}
	return loaded, nil
}

func (l *Loader) fit(img image.Image) (image.Image, bool) {
	if l.MaxDimension == 0 {
		return img, false
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	limit := int(l.MaxDimension)
	if longest <= limit {
		return img, false
	}

	ratio := float64(limit) / float64(longest)
	nw := max(int(float64(w)*ratio), 1)
	nh := max(int(float64(h)*ratio), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, true
}
