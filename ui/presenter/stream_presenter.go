package presenter

import (
	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/domain/stream"
	"github.com/soocke/scansurface-go/domain/surface"
)

// StreamModel holds the user's stream controls.
type StreamModel interface {
	Enabled() bool
	SetEnabled(bool) bool
	Torch() bool
	SetTorch(bool) bool
	Tracking() bool
	SetTracking(bool) bool
	Selector() camera.Selector
	SetSelector(camera.Selector) bool
	CameraOptions() camera.Options
}

// StreamController narrows what the presenter needs from the lifecycle controller.
type StreamController interface {
	Configure(camera.Options) stream.InitEvent
	SetEnabled(bool)
	SetTracking(stream.TrackingMode)
}

// StatusSink receives init events so the status label can follow them.
type StatusSink interface {
	OnInit(stream.InitEvent)
}

// StreamView updates UI elements affected by stream toggling.
type StreamView interface {
	SetStreaming(bool)
}

// StreamPresenter owns presentation logic for the stream controls.
type StreamPresenter struct {
	model   StreamModel
	ctrl    StreamController
	status  StatusSink
	view    StreamView
	overlay stream.TrackingMode
}

func NewStreamPresenter(model StreamModel, ctrl StreamController, status StatusSink, view StreamView) *StreamPresenter {
	return &StreamPresenter{model: model, ctrl: ctrl, status: status, view: view, overlay: stream.TrackingOn}
}

// SetOverlayRenderer replaces the renderer used while tracking is on. A nil
// fn restores the controller's default outline.
func (p *StreamPresenter) SetOverlayRenderer(fn surface.RenderFunc) {
	if !p.ready() {
		return
	}
	p.overlay = stream.TrackingOn
	if fn != nil {
		p.overlay = stream.TrackingCustom(fn)
	}
	if p.model.Tracking() {
		p.ctrl.SetTracking(p.overlay)
	}
}

func (p *StreamPresenter) trackingMode() stream.TrackingMode {
	if p.model.Tracking() {
		return p.overlay
	}
	return stream.TrackingOff
}

func (p *StreamPresenter) ready() bool {
	return p != nil && p.model != nil && p.ctrl != nil && p.view != nil
}

// Enable resumes streaming. Idempotent.
func (p *StreamPresenter) Enable() {
	if !p.ready() || !p.model.SetEnabled(true) {
		return
	}
	p.ctrl.SetEnabled(true)
	p.view.SetStreaming(p.model.Selector() != camera.SelectorOff)
}

// Disable pauses streaming; the controller freezes the last frame. Idempotent.
func (p *StreamPresenter) Disable() {
	if !p.ready() || !p.model.SetEnabled(false) {
		return
	}
	p.ctrl.SetEnabled(false)
	p.view.SetStreaming(false)
}

// Toggle flips enabled state delegating to Enable/Disable.
func (p *StreamPresenter) Toggle() {
	if !p.ready() {
		return
	}
	if p.model.Enabled() {
		p.Disable()
		return
	}
	p.Enable()
}

// SelectDevice switches the camera. Selecting the current device is a no-op.
func (p *StreamPresenter) SelectDevice(sel camera.Selector) {
	if !p.ready() || !p.model.SetSelector(sel) {
		return
	}
	p.configure()
}

// SetTorch requests the torch; the stream is re-initialized with the new options.
func (p *StreamPresenter) SetTorch(on bool) {
	if !p.ready() || !p.model.SetTorch(on) {
		return
	}
	p.configure()
}

// SetTracking switches the overlay on or off.
func (p *StreamPresenter) SetTracking(on bool) {
	if !p.ready() || !p.model.SetTracking(on) {
		return
	}
	p.ctrl.SetTracking(p.trackingMode())
}

// Apply pushes the whole model to the controller, typically once at startup.
func (p *StreamPresenter) Apply() {
	if !p.ready() {
		return
	}
	p.ctrl.SetEnabled(p.model.Enabled())
	p.ctrl.SetTracking(p.trackingMode())
	p.configure()
}

func (p *StreamPresenter) configure() {
	ev := p.ctrl.Configure(p.model.CameraOptions())
	if p.status != nil {
		p.status.OnInit(ev)
	}
	p.view.SetStreaming(p.model.Enabled() && p.model.Selector() != camera.SelectorOff)
}
