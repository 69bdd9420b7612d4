package phash

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
	"github.com/riadafridishibly/imgdedup/engine"
)

// Average sets a bit for every pixel brighter than the grid mean.
type Average struct {
	Size int
}

func (a Average) GenerateHash(img image.Image) (engine.Hash, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	h, err := goimagehash.ExtAverageHash(img, a.Size, a.Size)
	if err != nil {
		return nil, fmt.Errorf("average hash: %w", err)
	}
	return pack(h.GetHash()), nil
}

// Difference compares horizontally adjacent pixels on a (Size+1) x Size grid.
type Difference struct {
	Size int
}

func (d Difference) GenerateHash(img image.Image) (engine.Hash, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	h, err := goimagehash.ExtDifferenceHash(img, d.Size, d.Size)
	if err != nil {
		return nil, fmt.Errorf("difference hash: %w", err)
	}
	return pack(h.GetHash()), nil
}

// DCT keeps the lowest Size x Size frequencies of a 2D DCT and sets a bit for
// every coefficient above their median.
type DCT struct {
	Size int
}

func (d DCT) GenerateHash(img image.Image) (engine.Hash, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}

	if d.Size == DefaultSize {
		h, err := goimagehash.PerceptionHash(img)
		if err != nil {
			return nil, fmt.Errorf("dct hash: %w", err)
		}
		return pack([]uint64{h.GetHash()}), nil
	}

	h, err := goimagehash.ExtPerceptionHash(img, d.Size, d.Size)
	if err != nil {
		return nil, fmt.Errorf("dct hash: %w", err)
	}
	return pack(h.GetHash()), nil
}
