// Package phash adapts goimagehash's perceptual hashes to engine.Hasher.
//
// A hash of size n carries n*n bits, packed most significant bit first.
// Sizes are multiples of 8; the DCT hash also needs n*n to be a power of two
// and is capped at 16, past which its DCT grid grows too large to be useful.
package phash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/riadafridishibly/imgdedup/engine"
)

const (
	DefaultSize = 8
	MaxSize     = 64
	MaxDCTSize  = 16
)

var ErrEmptyImage = errors.New("image has no pixels")

// New returns the hasher registered under name: "dct", "average" or
// "difference". An empty name selects dct.
func New(name string, size int) (engine.Hasher, error) {
	if size < 8 || size > MaxSize || size%8 != 0 {
		return nil, fmt.Errorf("hash size %d must be a multiple of 8 in 8..%d", size, MaxSize)
	}

	switch strings.ToLower(name) {
	case "", "dct":
		if size > MaxDCTSize || size&(size-1) != 0 {
			return nil, fmt.Errorf("dct hash size %d must be 8 or %d", size, MaxDCTSize)
		}
		return DCT{Size: size}, nil
	case "average", "ahash":
		return Average{Size: size}, nil
	case "difference", "dhash":
		return Difference{Size: size}, nil
	}
	return nil, fmt.Errorf("unknown hash algorithm %q", name)
}

func checkImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}
	return nil
}

// pack lays the words out big endian so the first bit is the top bit of the
// first byte.
func pack(words []uint64) engine.Hash {
	out := make([]byte, 0, len(words)*8)
	for _, w := range words {
		out = binary.BigEndian.AppendUint64(out, w)
	}
	return out
}
