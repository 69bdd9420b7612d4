package tui

import (
	"fmt"
	"strings"

	"codeberg.org/tslocum/cview"
)

func (a *App) displayPath(p string) string {
	if a.userHomeDir == "" {
		return p
	}
	if after, ok := strings.CutPrefix(p, a.userHomeDir); ok {
		p = "~" + after
	}
	return p
}

// buildTable lists per-file failures, newest last.
func (a *App) buildTable(rows []errorRow) {
	theme := a.currentTheme
	table := a.table
	table.Clear()

	for i, r := range rows {
		// the row reference is read back by showErrorDetail
		pathCell := cview.NewTableCell(" " + a.displayPath(r.path))
		pathCell.SetTextColor(theme.fg)
		pathCell.SetAlign(cview.AlignLeft)
		pathCell.SetReference(r)
		table.SetCell(i, 0, pathCell)

		msgCell := cview.NewTableCell(r.message)
		msgCell.SetTextColor(theme.red)
		msgCell.SetAlign(cview.AlignLeft)
		msgCell.SetExpansion(1)
		table.SetCell(i, 1, msgCell)
	}

	table.SetBorder(false)
	table.SetBorders(false)
	table.SetSelectable(len(rows) > 0, false)
	table.SetSeparator(' ')
}

func (a *App) showErrorDetail() {
	row, _ := a.table.GetSelection()
	cell := a.table.GetCell(row, 0)
	if cell == nil {
		return
	}

	r, ok := cell.GetReference().(errorRow)
	if !ok {
		return
	}

	var detail strings.Builder
	fmt.Fprintf(&detail, "Path: %s\n\n", r.path)
	fmt.Fprintf(&detail, "Error: %s\n", r.message)

	a.detailModal.SetText(detail.String())
	a.showDetail = true
	a.setRoot(a.detailModal, false)
}
