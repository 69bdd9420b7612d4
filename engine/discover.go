package engine

import (
	"context"
	"fmt"
	"slices"
)

// Discover lists root through storage and returns the image files under it,
// sorted lexicographically so repeated runs over an unchanged tree dispatch
// in the same order.
func Discover(ctx context.Context, storage Storage, root string) ([]string, error) {
	items, err := storage.ListItems(ctx, root)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Wrap(KindCanceled, "discover", "run canceled", ctx.Err())
		}
		return nil, Wrap(KindDiscovery, "discover", fmt.Sprintf("cannot list %s", root), err)
	}

	files := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsDir || !storage.IsImageFile(item) {
			continue
		}
		files = append(files, item.ID)
	}

	slices.Sort(files)
	return files, nil
}
