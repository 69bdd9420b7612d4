// Package progress renders run events as plain text.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
)

// DefaultEvery is how many completed files pass between two progress lines.
const DefaultEvery = 100

// Console writes one line per event to w. Per-file errors are always
// printed; Quiet suppresses everything else.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	every int
	quiet bool
}

func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{w: w, every: DefaultEvery, quiet: quiet}
}

// SetEvery changes the progress interval. n below 1 prints every file.
func (c *Console) SetEvery(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.every = max(n, 1)
}

func (c *Console) Started(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quiet {
		return
	}
	fmt.Fprintf(c.w, "Found %s image files\n", humanize.Comma(int64(total)))
}

func (c *Console) Progress(completed, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quiet {
		return
	}
	if completed%c.every != 0 && completed != total {
		return
	}

	pct := 100.0
	if total > 0 {
		pct = float64(completed) * 100 / float64(total)
	}
	fmt.Fprintf(c.w, "Processed %s/%s (%.1f%%)\n", humanize.Comma(int64(completed)), humanize.Comma(int64(total)), pct)
}

func (c *Console) Error(path, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "Error: %s: %s\n", path, message)
}

func (c *Console) Completed(processed, errors int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quiet {
		return
	}
	fmt.Fprintf(c.w, "Completed: %s processed, %s errors\n", humanize.Comma(int64(processed)), humanize.Comma(int64(errors)))
}

// Noop discards every event.
type Noop struct{}

func (Noop) Started(int)          {}
func (Noop) Progress(int, int)    {}
func (Noop) Error(string, string) {}
func (Noop) Completed(int, int)   {}
