package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/domain/surface"
)

var (
	ErrAcquisition = errors.New("stream: camera acquisition failed")
	ErrClosed      = errors.New("stream: controller closed")
)

type trackingKind int

const (
	trackingOff trackingKind = iota
	trackingDefault
	trackingCustom
)

// TrackingMode selects how the tracking overlay is drawn.
type TrackingMode struct {
	kind   trackingKind
	render surface.RenderFunc
}

var (
	// TrackingOff disables the overlay and slows sampling down.
	TrackingOff = TrackingMode{kind: trackingOff}
	// TrackingOn draws the controller's default outline.
	TrackingOn = TrackingMode{kind: trackingDefault}
)

// TrackingCustom draws the overlay with fn. A nil fn is TrackingOff.
func TrackingCustom(fn surface.RenderFunc) TrackingMode {
	if fn == nil {
		return TrackingOff
	}
	return TrackingMode{kind: trackingCustom, render: fn}
}

// Enabled reports whether an overlay is drawn.
func (m TrackingMode) Enabled() bool { return m.kind != trackingOff }

func (m TrackingMode) String() string {
	switch m.kind {
	case trackingDefault:
		return "on"
	case trackingCustom:
		return "custom"
	default:
		return "off"
	}
}

func (m TrackingMode) renderer(def surface.RenderFunc) surface.RenderFunc {
	switch m.kind {
	case trackingDefault:
		return def
	case trackingCustom:
		return m.render
	default:
		return nil
	}
}

// InitEvent is published for every (re)initialization of the stream. Its
// outcome settles once acquisition finishes.
type InitEvent struct {
	ID        uuid.UUID
	Options   camera.Options
	StartedAt time.Time
	outcome   *outcome
}

type outcome struct {
	once sync.Once
	done chan struct{}
	caps camera.Capabilities
	err  error
}

func newInitEvent(opts camera.Options) InitEvent {
	return InitEvent{ID: uuid.New(), Options: opts, StartedAt: time.Now(), outcome: &outcome{done: make(chan struct{})}}
}

func (e InitEvent) resolve(caps camera.Capabilities, err error) {
	e.outcome.once.Do(func() {
		if err == nil {
			e.outcome.caps = caps.Clone()
		}
		e.outcome.err = err
		close(e.outcome.done)
	})
}

// Done is closed once the outcome is known.
func (e InitEvent) Done() <-chan struct{} { return e.outcome.done }

// Wait blocks until the outcome is known or ctx ends.
func (e InitEvent) Wait(ctx context.Context) (camera.Capabilities, error) {
	select {
	case <-e.outcome.done:
		if e.outcome.err != nil {
			return nil, e.outcome.err
		}
		return e.outcome.caps.Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InitListener observes InitEvents.
type InitListener func(InitEvent)
