package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/riadafridishibly/imgdedup/engine"
)

func headerStatus(s runState, now time.Time) string {
	switch {
	case s.finished && s.runErr != nil:
		if engine.IsKind(s.runErr, engine.KindCanceled) {
			return " Canceled "
		}
		return fmt.Sprintf(" Failed: %v ", s.runErr)
	case s.finished && s.summary != nil:
		sum := s.summary
		return fmt.Sprintf(" Done: %s files | Hashed: %s | Errors: %s | Took: %s | Avg: %.1fms/file ",
			humanize.Comma(int64(sum.TotalFiles)),
			humanize.Comma(int64(sum.ProcessedFiles)),
			humanize.Comma(int64(sum.ErrorCount)),
			(time.Duration(sum.TotalProcessingTimeMs) * time.Millisecond).Round(time.Millisecond),
			sum.AverageTimePerFileMs,
		)
	case s.started.IsZero():
		return " Discovering images... "
	case s.untracked:
		return fmt.Sprintf(" Running | Errors: %s | Elapsed: %s ",
			humanize.Comma(int64(s.errors)),
			now.Sub(s.started).Round(time.Second),
		)
	}

	pct := 100.0
	if s.total > 0 {
		pct = float64(s.completed) * 100 / float64(s.total)
	}
	return fmt.Sprintf(" Processed: %s/%s (%.1f%%) | Errors: %s | Elapsed: %s ",
		humanize.Comma(int64(s.completed)),
		humanize.Comma(int64(s.total)),
		pct,
		humanize.Comma(int64(s.errors)),
		now.Sub(s.started).Round(time.Second),
	)
}

func footerStatus(s runState, errorCount int) string {
	switch {
	case s.canceling && !s.finished:
		return " Canceling, waiting for in-flight files... "
	case s.finished:
		if errorCount > 0 {
			return " ↑/↓: Navigate  i: Details  t: Theme  [q/Q]: Quit "
		}
		return " t: Theme  [q/Q]: Quit "
	}
	return " ↑/↓: Navigate  i: Details  t: Theme  [q/Q]: Cancel "
}

func (a *App) render() {
	s, rows := a.snapshot()

	a.header.SetText(headerStatus(s, time.Now()))
	a.footer.SetText(footerStatus(s, len(rows)))
	a.buildTable(rows)
}
