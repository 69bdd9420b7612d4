package tui

import "github.com/gdamore/tcell/v3"

func (a *App) handleInput(event *tcell.EventKey) *tcell.EventKey {
	if a.showDetail || a.showTheme || a.showQuit {
		// vi key binding for modal button selection
		switch event.Str() {
		case "l":
			return tcell.NewEventKey(tcell.KeyRight, tcell.KeyNames[tcell.KeyRight], tcell.ModNone)
		case "h":
			return tcell.NewEventKey(tcell.KeyLeft, tcell.KeyNames[tcell.KeyLeft], tcell.ModNone)
		}
		return event
	}

	switch event.Str() {
	case "q", "Q":
		if a.finished() {
			a.Stop()
		} else {
			a.confirmQuit()
		}
		return nil
	case "i", "I":
		a.showErrorDetail()
		return nil
	case "t", "T":
		a.showThemeSelector()
		return nil
	case "j":
		return tcell.NewEventKey(tcell.KeyDown, tcell.KeyNames[tcell.KeyDown], tcell.ModNone)
	case "k":
		return tcell.NewEventKey(tcell.KeyUp, tcell.KeyNames[tcell.KeyUp], tcell.ModNone)
	}

	return event
}
