package engine

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	loaded *Loaded
	err    error
}

func (l stubLoader) LoadFromPath(context.Context, string) (*Loaded, error) {
	return l.loaded, l.err
}

func TestProcess_Success(t *testing.T) {
	loader := stubLoader{loaded: &Loaded{
		Image:      image.NewGray(image.Rect(0, 0, 640, 480)),
		Width:      640,
		Height:     480,
		FileSize:   123456,
		WasResized: true,
	}}

	result := Process(context.Background(), loader, &fakeHasher{}, "/a/photo.jpg")
	require.True(t, result.OK())

	assert.Equal(t, "/a/photo.jpg", result.Path)
	assert.Equal(t, "dead80e000000001", result.Hash)
	assert.Equal(t, uint64(123456), result.Metadata.FileSize)
	assert.Equal(t, uint32(640), result.Metadata.Width)
	assert.Equal(t, uint32(480), result.Metadata.Height)
	assert.True(t, result.Metadata.WasResized)
}

func TestProcess_LoaderError(t *testing.T) {
	loader := stubLoader{err: errors.New("open /a/gone.png: no such file or directory")}

	result := Process(context.Background(), loader, &fakeHasher{}, "/a/gone.png")
	require.False(t, result.OK())

	assert.Equal(t, "/a/gone.png", result.Path)
	assert.Equal(t, "open /a/gone.png: no such file or directory", result.Err)
	assert.Empty(t, result.Hash)
}

func TestProcess_HasherError(t *testing.T) {
	loader := stubLoader{loaded: &Loaded{Image: image.NewGray(image.Rect(0, 0, 1, 1)), Width: 1, Height: 1}}
	hasher := &fakeHasher{err: errors.New("image has no pixels")}

	result := Process(context.Background(), loader, hasher, "/a/x.png")
	require.False(t, result.OK())
	assert.Contains(t, result.Err, "image has no pixels")
	assert.Contains(t, result.Err, "/a/x.png")
}

func TestProcess_NilImage(t *testing.T) {
	result := Process(context.Background(), stubLoader{loaded: &Loaded{}}, &fakeHasher{}, "/a/empty.png")
	assert.False(t, result.OK())
	assert.NotEmpty(t, result.Err)
}
