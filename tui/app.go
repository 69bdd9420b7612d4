// Package tui shows a running fingerprint job on a full-screen terminal view.
// The App doubles as the engine's progress sink.
package tui

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"codeberg.org/tslocum/cview"
	"github.com/riadafridishibly/imgdedup/engine"
)

type errorRow struct {
	path    string
	message string
}

// runState is everything the screen renders. Guarded by App.mu.
type runState struct {
	total     int
	completed int
	errors    int
	processed int

	started   time.Time
	finished  bool
	canceling bool
	// no Started/Progress events will arrive, only errors
	untracked bool

	summary *engine.Summary
	runErr  error
}

type App struct {
	app    *cview.Application
	config Config
	cancel context.CancelFunc

	header      *cview.TextView
	footer      *cview.TextView
	table       *cview.Table
	panels      *cview.Panels
	layout      *cview.Flex
	detailModal *cview.Modal
	themeModal  *cview.Modal
	quitModal   *cview.Modal

	rootPath    string
	userHomeDir string

	showDetail bool
	showTheme  bool
	showQuit   bool

	uiUpdates chan func()

	mu        sync.Mutex
	state     runState
	errorRows []errorRow
	dirty     bool

	currentTheme Theme
	stopOnce     sync.Once
	done         chan struct{}
}

var _ engine.ProgressSink = (*App)(nil)

// NewApp builds the screen for a run over rootPath. cancel is invoked when
// the user quits before the run has finished.
func NewApp(rootPath string, cfg Config, cancel context.CancelFunc) *App {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}
	theme := lookupTheme(cfg.Theme)

	header := cview.NewTextView()
	header.SetDynamicColors(true)
	header.SetTextAlign(cview.AlignCenter)

	footer := cview.NewTextView()
	footer.SetDynamicColors(true)
	footer.SetTextAlign(cview.AlignCenter)

	detailModal := cview.NewModal()
	detailModal.AddButtons([]string{"Okay"})

	themeModal := cview.NewModal()
	names := themeNames()
	themeModal.AddButtons(names)

	quitModal := cview.NewModal()
	quitModal.AddButtons([]string{"Keep Running", "Cancel Run"})

	table := cview.NewTable()
	panels := cview.NewPanels()
	panels.AddPanel("errors", table, true, true)

	a := &App{
		app:          cview.NewApplication(),
		config:       cfg,
		cancel:       cancel,
		header:       header,
		footer:       footer,
		table:        table,
		panels:       panels,
		detailModal:  detailModal,
		themeModal:   themeModal,
		quitModal:    quitModal,
		rootPath:     rootPath,
		uiUpdates:    make(chan func(), 128),
		currentTheme: theme,
		done:         make(chan struct{}),
	}
	if cfg.ReplaceHomeWithTilde {
		if home, err := os.UserHomeDir(); err == nil {
			a.userHomeDir = home
		}
	}

	flex := cview.NewFlex()
	flex.SetDirection(cview.FlexRow)
	flex.AddItem(header, 1, 0, false)
	flex.AddItem(panels, 0, 1, true)
	flex.AddItem(footer, 1, 0, false)
	a.layout = flex

	a.app.SetInputCapture(a.handleInput)

	detailModal.SetDoneFunc(func(_ int, _ string) {
		a.showDetail = false
		a.setRoot(flex, true)
	})

	themeModal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		a.showTheme = false
		a.setRoot(flex, true)

		if buttonIndex >= 0 && buttonIndex < len(names) {
			a.currentTheme = lookupTheme(buttonLabel)
			a.applyTheme()
		}
	})

	quitModal.SetDoneFunc(func(_ int, buttonLabel string) {
		a.showQuit = false
		a.setRoot(flex, true)

		if buttonLabel == "Cancel Run" {
			a.cancelRun()
		}
	})

	a.app.SetRoot(flex, true)
	a.styleWidgets()
	a.render()

	return a
}

func (a *App) styleWidgets() {
	theme := a.currentTheme

	a.header.SetBackgroundColor(theme.headerBg)
	a.header.SetTextColor(theme.headerFg)
	a.footer.SetBackgroundColor(theme.footerBg)
	a.footer.SetTextColor(theme.footerFg)

	for _, m := range []*cview.Modal{a.detailModal, a.themeModal, a.quitModal} {
		m.SetBackgroundColor(theme.bg)
		m.SetTextColor(theme.fg)
		m.SetButtonBackgroundColor(theme.buttonBg)
		m.SetButtonTextColor(theme.buttonFg)
	}

	a.table.SetBackgroundColor(theme.bg)
	a.panels.SetBackgroundColor(theme.bg)
}

func (a *App) applyTheme() {
	a.trySendUIUpdate(func() {
		a.styleWidgets()
		a.render()
	})
}

func (a *App) showThemeSelector() {
	theme := a.currentTheme
	a.themeModal.SetText(fmt.Sprintf("Select Theme (Current: [%s]%s[-])", theme.accent.String(), theme.Name))
	a.showTheme = true
	a.setRoot(a.themeModal, false)
}

func (a *App) confirmQuit() {
	a.quitModal.SetText("Processing is still running.\n\nCancel the run and quit?")
	a.showQuit = true
	a.setRoot(a.quitModal, false)
}

func (a *App) cancelRun() {
	a.mu.Lock()
	a.state.canceling = true
	a.dirty = true
	a.mu.Unlock()

	log.Printf("Run over %s canceled from the UI", a.rootPath)
	if a.cancel != nil {
		a.cancel()
	}
}

// Finish records how the run ended. A run the user canceled closes the
// screen right away; otherwise the final summary stays up until 'q'.
func (a *App) Finish(summary *engine.Summary, err error) {
	a.mu.Lock()
	a.state.finished = true
	a.state.summary = summary
	a.state.runErr = err
	canceling := a.state.canceling
	a.dirty = true
	a.mu.Unlock()

	if canceling {
		a.Stop()
		return
	}
	a.trySendUIUpdate(a.render)
}

func (a *App) finished() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.finished
}

// Run blocks until the screen is closed.
func (a *App) Run() error {
	log.Println("Theme:", a.currentTheme.Name)
	go func() {
		for updateFn := range a.uiUpdates {
			a.app.QueueUpdateDraw(updateFn)
		}
	}()
	go a.refreshLoop()

	err := a.app.Run()
	a.stopOnce.Do(func() { close(a.done) })
	return err
}

func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.app.Stop()
	})
}
