package presenter

import (
	"image/draw"
	"testing"

	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/domain/geometry"
	"github.com/soocke/scansurface-go/domain/stream"
	"github.com/soocke/scansurface-go/ui/model"
)

type mockController struct {
	configured []camera.Options
	enabled    []bool
	tracking   []stream.TrackingMode
	events     []stream.InitEvent
}

func (c *mockController) Configure(opts camera.Options) stream.InitEvent {
	c.configured = append(c.configured, opts)
	// A real controller resolves "off" synchronously; use one to mint events.
	ctrl := stream.New(stream.Options{})
	defer ctrl.Close()
	ev := ctrl.Configure(camera.Options{Selector: camera.SelectorOff})
	c.events = append(c.events, ev)
	return ev
}
func (c *mockController) SetEnabled(b bool)                 { c.enabled = append(c.enabled, b) }
func (c *mockController) SetTracking(m stream.TrackingMode) { c.tracking = append(c.tracking, m) }

type mockStatus struct{ events int }

func (s *mockStatus) OnInit(stream.InitEvent) { s.events++ }

type mockStreamView struct {
	streaming []bool
}

func (v *mockStreamView) SetStreaming(b bool) { v.streaming = append(v.streaming, b) }

func TestStreamPresenter_EnableDisable_Idempotent(t *testing.T) {
	m := &model.StreamModel{}
	m.SetSelector(camera.SelectorAuto)
	ctrl := &mockController{}
	view := &mockStreamView{}
	p := NewStreamPresenter(m, ctrl, nil, view)

	p.Enable()
	p.Enable()
	if len(ctrl.enabled) != 1 || !ctrl.enabled[0] || !m.Enabled() {
		t.Fatalf("enable not idempotent: calls=%v enabled=%v", ctrl.enabled, m.Enabled())
	}
	if len(view.streaming) != 1 || !view.streaming[0] {
		t.Fatalf("view not updated on enable: %v", view.streaming)
	}

	p.Disable()
	p.Disable()
	if len(ctrl.enabled) != 2 || ctrl.enabled[1] || m.Enabled() {
		t.Fatalf("disable not idempotent: calls=%v enabled=%v", ctrl.enabled, m.Enabled())
	}

	p.Toggle()
	if !m.Enabled() || len(ctrl.enabled) != 3 {
		t.Fatalf("toggle should enable: calls=%v", ctrl.enabled)
	}
}

func TestStreamPresenter_DeviceAndTorchReconfigure(t *testing.T) {
	m := &model.StreamModel{}
	m.SetEnabled(true)
	ctrl := &mockController{}
	status := &mockStatus{}
	view := &mockStreamView{}
	p := NewStreamPresenter(m, ctrl, status, view)

	p.SelectDevice(camera.SelectorFront)
	p.SelectDevice(camera.SelectorFront)
	p.SetTorch(true)
	if len(ctrl.configured) != 2 {
		t.Fatalf("expected 2 Configure calls, got %d", len(ctrl.configured))
	}
	last := ctrl.configured[1]
	if last.Selector != camera.SelectorFront || !last.Torch {
		t.Fatalf("unexpected options %+v", last)
	}
	if status.events != 2 {
		t.Fatalf("status should see every init event, got %d", status.events)
	}

	p.SelectDevice(camera.SelectorOff)
	if view.streaming[len(view.streaming)-1] {
		t.Fatal("selecting off should show the stream as stopped")
	}
}

func TestStreamPresenter_TrackingAndApply(t *testing.T) {
	m := &model.StreamModel{}
	ctrl := &mockController{}
	p := NewStreamPresenter(m, ctrl, nil, &mockStreamView{})

	p.SetTracking(true)
	p.SetTracking(true)
	p.SetTracking(false)
	if len(ctrl.tracking) != 2 || !ctrl.tracking[0].Enabled() || ctrl.tracking[1].Enabled() {
		t.Fatalf("unexpected tracking calls %v", ctrl.tracking)
	}

	m.SetEnabled(true)
	m.SetSelector(camera.SelectorRear)
	p.Apply()
	if len(ctrl.configured) != 1 || ctrl.configured[0].Selector != camera.SelectorRear {
		t.Fatalf("apply should configure once with the model options, got %v", ctrl.configured)
	}
	if got := ctrl.enabled[len(ctrl.enabled)-1]; !got {
		t.Fatal("apply should push enabled=true")
	}

	var nilPresenter *StreamPresenter
	nilPresenter.Toggle()
	nilPresenter.Apply()
}

func TestStreamPresenter_OverlayRenderer(t *testing.T) {
	m := &model.StreamModel{}
	ctrl := &mockController{}
	p := NewStreamPresenter(m, ctrl, nil, &mockStreamView{})

	p.SetOverlayRenderer(func(geometry.Location, draw.Image) {})
	if len(ctrl.tracking) != 0 {
		t.Fatal("overlay change while tracking is off must not touch the controller")
	}
	p.SetTracking(true)
	if got := ctrl.tracking[len(ctrl.tracking)-1].String(); got != "custom" {
		t.Fatalf("tracking mode = %q, want custom", got)
	}
	p.SetOverlayRenderer(nil)
	if got := ctrl.tracking[len(ctrl.tracking)-1].String(); got != "on" {
		t.Fatalf("tracking mode = %q, want on", got)
	}
}
