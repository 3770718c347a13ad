package view

import (
	"image"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/scansurface-go/config"
	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are invoked on user actions. Nil handlers are ignored.
type Handlers struct {
	OnToggleStream   func()
	OnSelectDevice   func(camera.Selector)
	OnToggleTorch    func()
	OnToggleTracking func()
	OnConfigApplied  func(*config.Config)
	OnExit           func()
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Preview     VideoPreview

	// Widgets
	StatusLabel    *TLabelWidget
	DetectionLabel *TLabelWidget
	CapsLabel      *LabelWidget
	History        *TextWidget
	DeviceSelect   *TComboboxWidget
	streamBtn      *TButtonWidget
	torchBtn       *ButtonWidget
	trackingBtn    *ButtonWidget
	torchOn        bool
	trackingOn     bool
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	call := func(fn func()) func() {
		return func() {
			if fn != nil {
				fn()
			}
		}
	}

	// Row 0: session stats, status label, controls frame
	statsFrame := Frame()
	Grid(statsFrame, Row(0), Column(0), Columnspan(2), Sticky("nw"), Padx("0.3m"), Pady("0.3m"))
	rv.Session = NewSessionStats(statsFrame, 0, 0)
	rv.StatusLabel = TLabel(Txt("Status: <none>"), Style(theme.StyleStatusLabel))
	Grid(rv.StatusLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.streamBtn = TButton(Txt("Pause"), Style(theme.StylePrimaryButton), Command(call(h.OnToggleStream)))
	Grid(rv.streamBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	selectors := make([]string, len(camera.Selectors))
	current := 0
	for i, s := range camera.Selectors {
		selectors[i] = string(s)
		if rv.cfg != nil && string(s) == rv.cfg.Camera {
			current = i
		}
	}
	rv.DeviceSelect = TCombobox(Values(selectors), Width(12))
	Grid(rv.DeviceSelect, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.DeviceSelect.Current(current)
	Bind(rv.DeviceSelect, "<<ComboboxSelected>>", Command(func() {
		if rv.DeviceSelect == nil || h.OnSelectDevice == nil {
			return
		}
		idx, err := strconv.Atoi(rv.DeviceSelect.Current(nil))
		if err != nil || idx < 0 || idx >= len(camera.Selectors) {
			if rv.logger != nil {
				rv.logger.Error("device selection parse error", "error", err)
			}
			return
		}
		h.OnSelectDevice(camera.Selectors[idx])
	}))

	if rv.cfg != nil {
		rv.torchOn = rv.cfg.Torch
		rv.trackingOn = rv.cfg.TrackingEnabled()
	}
	rv.torchBtn = Button(Txt(toggleText("Torch", rv.torchOn)), Command(func() {
		rv.torchOn = !rv.torchOn
		rv.torchBtn.Configure(Txt(toggleText("Torch", rv.torchOn)))
		call(h.OnToggleTorch)()
	}))
	Grid(rv.torchBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.trackingBtn = Button(Txt(toggleText("Tracking", rv.trackingOn)), Command(func() {
		rv.trackingOn = !rv.trackingOn
		rv.trackingBtn.Configure(Txt(toggleText("Tracking", rv.trackingOn)))
		call(h.OnToggleTracking)()
	}))
	Grid(rv.trackingBtn, In(btnFrame), Row(3), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(call(h.OnExit)))
	Grid(exitBtn, In(btnFrame), Row(4), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Row 1: video box spanning columns 0-3
	w, ht := 640, 480
	if rv.cfg != nil {
		w, ht = rv.cfg.DisplayWidth, rv.cfg.DisplayHeight
	}
	rv.Preview = NewVideoPreview(1, w, ht)

	// Row 2: detection result, capabilities, history
	rv.DetectionLabel = TLabel(Txt("Detected: <none>"), Anchor("w"), Style(theme.StyleDetectionLabel))
	Grid(rv.DetectionLabel, Row(2), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.CapsLabel = Label(Txt(""), Anchor("nw"), Justify("left"))
	Grid(rv.CapsLabel, Row(2), Column(4), Rowspan(2), Sticky("nw"), Padx("0.4m"), Pady("0.3m"))
	rv.History = Text(Height(6), Width(60))
	Grid(rv.History, Row(3), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.History.Configure(State("disabled"))

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, h.OnConfigApplied)
	rv.ConfigPanel.Build(4)
}

func toggleText(name string, on bool) string {
	if on {
		return name + ": on"
	}
	return name + ": off"
}

// SetStatusLabel updates the status label text.
func (rv *RootView) SetStatusLabel(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// SetCapabilities shows the device capabilities (or the acquisition error).
func (rv *RootView) SetCapabilities(text string) {
	if rv != nil && rv.CapsLabel != nil {
		rv.CapsLabel.Configure(Txt(text))
	}
}

// SetTorchAvailable enables the torch toggle only for devices that have one.
func (rv *RootView) SetTorchAvailable(b bool) {
	if rv == nil || rv.torchBtn == nil {
		return
	}
	state := "disabled"
	if b || rv.torchOn {
		state = "normal"
	}
	rv.torchBtn.Configure(State(state))
}

// SetStreaming reflects the enabled flag on the toggle button.
func (rv *RootView) SetStreaming(b bool) {
	if rv == nil {
		return
	}
	if rv.streamBtn != nil {
		if b {
			rv.streamBtn.Configure(Txt("Pause"))
		} else {
			rv.streamBtn.Configure(Txt("Resume"))
		}
	}
}

// UpdatePreview proxies to the video preview.
func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Update(img)
	}
}

// PreviewSize returns the current video box size.
func (rv *RootView) PreviewSize() image.Point {
	if rv == nil || rv.Preview == nil {
		return image.Point{}
	}
	return rv.Preview.Size()
}

// SetDetection shows the latest decoded payload.
func (rv *RootView) SetDetection(text string) {
	if rv != nil && rv.DetectionLabel != nil {
		rv.DetectionLabel.Configure(Txt("Detected: " + text))
	}
}

// SetHistory replaces the history text.
func (rv *RootView) SetHistory(lines []string) {
	if rv == nil || rv.History == nil {
		return
	}
	rv.History.Configure(State("normal"))
	rv.History.Delete("1.0", END)
	rv.History.Insert("1.0", strings.Join(lines, "\n"))
	rv.History.Configure(State("disabled"))
}

// SetSession updates both session and total streaming durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

// SetDetections updates the detection counters.
func (rv *RootView) SetDetections(session, total int) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetDetections(session, total)
}

// SetScanStats updates the scan counters line.
func (rv *RootView) SetScanStats(text string) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetScanStats(text)
}
