package tui

import (
	"time"

	"codeberg.org/tslocum/cview"
)

func (a *App) trySendUIUpdate(f func()) {
	select {
	case a.uiUpdates <- f:
	default:
	}
}

// setRoot queues a SetRoot operation to avoid data races
func (a *App) setRoot(primitive cview.Primitive, focus bool) {
	a.app.QueueUpdateDraw(func() {
		a.app.SetRoot(primitive, focus)
	})
}

// The sink methods below only touch runState. refreshLoop redraws at most
// once per RefreshInterval, however fast the collector reports.

func (a *App) Started(total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.total = total
	a.state.started = time.Now()
	a.dirty = true
}

// SetProgressReporting tells the screen whether the engine sends Started and
// Progress events. Without them the header shows elapsed time and errors only.
func (a *App) SetProgressReporting(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.untracked = !enabled
	if !enabled && a.state.started.IsZero() {
		a.state.started = time.Now()
	}
	a.dirty = true
}

func (a *App) Progress(completed, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.started.IsZero() {
		a.state.started = time.Now()
	}
	a.state.completed = completed
	a.state.total = total
	a.dirty = true
}

func (a *App) Error(path, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errorRows = append(a.errorRows, errorRow{path: path, message: message})
	a.state.errors++
	a.dirty = true
}

func (a *App) Completed(processed, errors int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.processed = processed
	a.state.errors = errors
	a.state.completed = processed + errors
	a.dirty = true
}

func (a *App) refreshLoop() {
	ticker := time.NewTicker(a.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.mu.Lock()
			dirty := a.dirty
			a.dirty = false
			a.mu.Unlock()

			if dirty {
				a.trySendUIUpdate(a.render)
			}
		}
	}
}

// snapshot copies the state for rendering outside the lock.
func (a *App) snapshot() (runState, []errorRow) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rows := make([]errorRow, len(a.errorRows))
	copy(rows, a.errorRows)
	return a.state, rows
}
