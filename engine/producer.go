package engine

import "context"

// produce feeds files into work in order, blocking while the channel is full.
// Closing work is the only end-of-input signal the consumers get. A done ctx
// means a downstream stage has stopped listening, which is not an error here.
func produce(ctx context.Context, files []string, work chan<- string) error {
	defer close(work)

	for _, path := range files {
		select {
		case work <- path:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
