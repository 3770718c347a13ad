package app

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/scansurface-go/config"
	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/domain/decode"
	"github.com/soocke/scansurface-go/domain/stream"
	"github.com/soocke/scansurface-go/domain/surface"
	"github.com/soocke/scansurface-go/ui/model"
	"github.com/soocke/scansurface-go/ui/presenter"
)

// UI is everything the presenters write to.
type UI interface {
	presenter.StatusView
	presenter.StreamView
	presenter.ScanView
	presenter.SessionView
}

// ContainerOptions selects the front end and lets callers swap the device
// and decoder. A nil UI runs headless: results are logged and surfaces are
// flushed by a ticker. Nil Acquire and Decoders use the screen device and the
// QR worker.
type ContainerOptions struct {
	UI       UI
	Acquire  camera.Acquirer
	Decoders decode.Factory
}

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Stream     *model.StreamModel
	Session    *model.SessionModel
	Detections *model.DetectionLog
	Surfaces   *surface.Manager
	Controller *stream.Controller
	UI         UI

	// Presenters
	StatusPresenter  *presenter.StatusPresenter
	SessionPresenter *presenter.SessionPresenter
	ScanPresenter    *presenter.ScanPresenter
	StreamPresenter  *presenter.StreamPresenter
	Loop             *presenter.Loop

	ticker *surface.TickerScheduler
}

// BuildContainer constructs all components. Nothing is acquired until
// StreamPresenter.Apply runs.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string, opts ContainerOptions) *AppContainer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}

	c.Stream = &model.StreamModel{}
	c.Stream.SetEnabled(cfg.Enabled)
	c.Stream.SetSelector(cfg.Selector())
	c.Stream.SetTorch(cfg.Torch)
	c.Stream.SetTracking(cfg.TrackingEnabled())
	c.Session = model.NewSessionModel()
	c.Detections = model.NewDetectionLog(cfg.HistorySize)

	// Surface writes are deferred to the UI tick. Headless runs flush on
	// their own ticker; a window flushes from Loop.Tick on its own thread.
	var sched surface.Scheduler
	var flush func()
	if opts.UI == nil {
		c.ticker = surface.NewTickerScheduler(surface.DefaultRefreshInterval)
		sched = c.ticker
		c.UI = newLogUI(logger)
	} else {
		q := surface.NewQueueScheduler()
		sched, flush = q, q.Flush
		c.UI = opts.UI
	}
	c.Surfaces = surface.NewManager(sched, logger)

	// The video box never changes size at runtime, so the loop goroutine can
	// read it without touching Tk.
	display := image.Pt(cfg.DisplayWidth, cfg.DisplayHeight)
	displayFn := func() image.Point { return display }

	c.ScanPresenter = presenter.NewScanPresenter(nil, c.Surfaces, c.UI, c.Detections, nil, displayFn, logger)
	c.Surfaces.OnFlush(func([]surface.Kind) { c.ScanPresenter.MarkDirty() })

	acquire := opts.Acquire
	if acquire == nil {
		acquire = camera.NewScreenAcquirer(logger)
	}
	decoders := opts.Decoders
	if decoders == nil {
		decoders = decode.QRFactory(logger)
	}
	c.Controller = stream.New(stream.Options{
		Acquire:         acquire,
		Decoders:        decoders,
		Surfaces:        c.Surfaces,
		Display:         displayFn,
		DefaultRenderer: overlayRenderer(cfg, logger),
		TrackingDelay:   time.Duration(cfg.TrackingMinDelayMs) * time.Millisecond,
		IdleDelay:       time.Duration(cfg.IdleMinDelayMs) * time.Millisecond,
		OnDetect:        c.ScanPresenter.OnDetect,
		Logger:          logger,
	})
	c.ScanPresenter.Source = c.Controller
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Controller, c.UI)
	c.SessionPresenter.Counters = c.Controller
	c.ScanPresenter.Counter = c.SessionPresenter

	c.StatusPresenter = presenter.NewStatusPresenter(c.UI, logger)
	c.Controller.AddInitListener(c.StatusPresenter.OnInit)
	c.StreamPresenter = presenter.NewStreamPresenter(c.Stream, c.Controller, nil, c.UI)
	c.Loop = presenter.NewLoop(flush, c.StatusPresenter, c.SessionPresenter, c.ScanPresenter, nil)
	return c
}

func overlayRenderer(cfg *config.Config, logger *slog.Logger) surface.RenderFunc {
	col, err := config.ParseHexColor(cfg.TrackingColor)
	if err != nil {
		if logger != nil {
			logger.Warn("tracking color", "value", cfg.TrackingColor, "error", err)
		}
		col, _ = config.ParseHexColor(config.DefaultConfig().TrackingColor)
	}
	return surface.OutlineRenderer(col, cfg.TrackingWidth)
}

// ApplyConfig takes over settings changed at runtime. The overlay style
// applies immediately; delays and display size need a restart.
func (c *AppContainer) ApplyConfig(cfg *config.Config) {
	if c == nil || cfg == nil {
		return
	}
	c.StreamPresenter.SetOverlayRenderer(overlayRenderer(cfg, c.Logger))
	if c.Logger != nil {
		c.Logger.Info("config applied", "tracking_color", cfg.TrackingColor, "tracking_width", cfg.TrackingWidth)
	}
}

// Close tears the stream down and persists the user's last stream choices.
func (c *AppContainer) Close() {
	if c == nil {
		return
	}
	if err := c.Controller.Close(); err != nil && c.Logger != nil {
		c.Logger.Warn("controller close", "error", err)
	}
	if c.ticker != nil {
		c.ticker.Stop()
	}
	if c.ConfigPath == "" {
		return
	}
	c.Config.Camera = string(c.Stream.Selector())
	c.Config.Torch = c.Stream.Torch()
	c.Config.Enabled = c.Stream.Enabled()
	if c.Stream.Tracking() {
		c.Config.Tracking = "on"
	} else {
		c.Config.Tracking = "off"
	}
	if err := c.Config.Save(c.ConfigPath); err != nil && c.Logger != nil {
		c.Logger.Error("config save failed", "error", err)
	}
}
