package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	storage := &fakeStorage{items: []Item{
		{ID: "/r/z.png", Ext: "png"},
		{ID: "/r/notes.txt", Ext: "txt"},
		{ID: "/r/sub", IsDir: true},
		{ID: "/r/sub/b.JPG", Ext: "JPG"},
		{ID: "/r/a.webp", Ext: "webp"},
		{ID: "/r/raw", Ext: ""},
		{ID: "/r/dir.png", Ext: "png", IsDir: true},
	}}

	files, err := Discover(context.Background(), storage, "/r")
	require.NoError(t, err)
	assert.Equal(t, []string{"/r/a.webp", "/r/sub/b.JPG", "/r/z.png"}, files)
}

func TestDiscover_Idempotent(t *testing.T) {
	storage := filesStorage("/r/c.png", "/r/a.png", "/r/b.gif")

	first, err := Discover(context.Background(), storage, "/r")
	require.NoError(t, err)
	second, err := Discover(context.Background(), storage, "/r")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDiscover_ListingError(t *testing.T) {
	cause := errors.New("lstat /nope: no such file or directory")
	files, err := Discover(context.Background(), &fakeStorage{err: cause}, "/nope")

	require.Error(t, err)
	assert.Nil(t, files)
	assert.True(t, IsKind(err, KindDiscovery))
	assert.ErrorIs(t, err, cause)
}

func TestDiscover_CanceledWhileListing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, &fakeStorage{err: context.Canceled}, "/r")
	assert.True(t, IsKind(err, KindCanceled))
	assert.ErrorIs(t, err, context.Canceled)
}
