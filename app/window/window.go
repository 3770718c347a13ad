// Package window hosts the scanner in a Tk main window.
package window

import (
	"fmt"
	"log/slog"
	"time"

	tk "modernc.org/tk9.0"

	"github.com/soocke/scansurface-go/app"
	"github.com/soocke/scansurface-go/config"
	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/ui/theme"
	"github.com/soocke/scansurface-go/ui/view"
)

const tick = 50 * time.Millisecond

// Window owns the root view and drives the presenter loop from Tk's event loop.
type Window struct {
	c       *app.AppContainer
	root    *view.RootView
	logger  *slog.Logger
	afterID string
	closed  bool
}

// New builds the container around a fresh root view.
func New(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) *Window {
	root := view.NewRootView(cfg, cfgPath, logger)
	w := &Window{
		c:      app.BuildContainer(cfg, logger, cfgPath, app.ContainerOptions{UI: root}),
		root:   root,
		logger: logger,
	}
	width := cfg.DisplayWidth + 260
	height := cfg.DisplayHeight + 420
	tk.App.WmTitle(title)
	tk.WmProtocol(tk.App, "WM_DELETE_WINDOW", w.exitHandler)
	tk.WmGeometry(tk.App, fmt.Sprintf("%dx%d+100+100", width, height))
	return w
}

// Start builds the UI, applies the stored stream settings and blocks in the
// Tk event loop until the window closes.
func (w *Window) Start() {
	c := w.c
	theme.InitStyles()
	w.root.Build(view.Handlers{
		OnToggleStream:   c.StreamPresenter.Toggle,
		OnSelectDevice:   func(sel camera.Selector) { c.StreamPresenter.SelectDevice(sel) },
		OnToggleTorch:    func() { c.StreamPresenter.SetTorch(!c.Stream.Torch()) },
		OnToggleTracking: func() { c.StreamPresenter.SetTracking(!c.Stream.Tracking()) },
		OnConfigApplied:  c.ApplyConfig,
		OnExit:           w.exitHandler,
	})
	c.Loop.Schedule = w.scheduleUpdate
	c.StreamPresenter.Apply()
	w.scheduleUpdate()
	tk.App.Wait()
}

func (w *Window) update() {
	if w.closed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if w.logger != nil {
				w.logger.Error("ui tick panic", "error", r)
			}
			w.scheduleUpdate()
		}
	}()
	w.c.Loop.Tick()
}

func (w *Window) exitHandler() {
	if w.closed {
		return
	}
	w.closed = true
	if w.afterID != "" {
		tk.TclAfterCancel(w.afterID)
	}
	w.c.Close()
	tk.Destroy(tk.App)
}

// scheduleUpdate keeps every surface flush and widget update on Tk's thread.
func (w *Window) scheduleUpdate() {
	w.afterID = tk.TclAfter(tick, func() { w.update() })
}
