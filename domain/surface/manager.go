package surface

import (
	"image"
	"image/draw"
	"log/slog"
	"sync"

	"github.com/soocke/scansurface-go/domain/geometry"
)

// Kind identifies one of the managed surfaces.
type Kind int

const (
	KindPause Kind = iota
	KindTracking
)

func (k Kind) String() string {
	switch k {
	case KindPause:
		return "pause"
	case KindTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// RenderFunc draws a display-space location onto dst. dst is already sized
// to the display box and cleared.
type RenderFunc func(mapped geometry.Location, dst draw.Image)

// Manager owns the pause-frame and tracking-overlay surfaces. Every mutation
// is deferred to the scheduler's next tick; only the latest pending write per
// surface runs.
type Manager struct {
	logger   *slog.Logger
	sched    Scheduler
	pause    Surface
	tracking Surface

	mu        sync.Mutex
	pending   map[Kind]func()
	scheduled bool
	onFlush   func(kinds []Kind)
}

// NewManager returns a manager that defers writes through sched.
func NewManager(sched Scheduler, logger *slog.Logger) *Manager {
	return &Manager{logger: logger, sched: sched, pending: make(map[Kind]func(), 2)}
}

// OnFlush registers fn to be called after each tick that changed a surface.
func (m *Manager) OnFlush(fn func(kinds []Kind)) {
	m.mu.Lock()
	m.onFlush = fn
	m.mu.Unlock()
}

// Pause exposes the pause-frame surface for reading.
func (m *Manager) Pause() *Surface { return &m.pause }

// Tracking exposes the tracking-overlay surface for reading.
func (m *Manager) Tracking() *Surface { return &m.tracking }

// PaintPauseFrame sizes the pause surface to frame and copies its pixels.
func (m *Manager) PaintPauseFrame(frame *image.RGBA) {
	if frame == nil {
		m.ClearPauseFrame()
		return
	}
	m.enqueue(KindPause, func() { m.pause.paint(frame) })
}

// ClearPauseFrame clears the pause surface.
func (m *Manager) ClearPauseFrame() {
	m.enqueue(KindPause, m.pause.erase)
}

// ClearTrackingLayer clears the tracking surface.
func (m *Manager) ClearTrackingLayer() {
	m.enqueue(KindTracking, m.tracking.erase)
}

// RepaintTrackingLayer maps loc into display space, resizes the tracking
// surface to the display box and lets render draw it. A nil render, the
// no-location value or unusable geometry clears the layer instead.
func (m *Manager) RepaintTrackingLayer(loc geometry.Location, g geometry.DisplayGeometry, render RenderFunc) {
	if render == nil || loc.IsNone() || !g.Valid() {
		m.ClearTrackingLayer()
		return
	}
	mapped := geometry.MapLocation(loc, g)
	m.enqueue(KindTracking, func() {
		m.tracking.redraw(g.DisplayWidth, g.DisplayHeight, func(dst draw.Image) {
			defer func() {
				if r := recover(); r != nil && m.logger != nil {
					m.logger.Error("tracking render panic", "error", r)
				}
			}()
			render(mapped, dst)
		})
	})
}

func (m *Manager) enqueue(kind Kind, op func()) {
	m.mu.Lock()
	m.pending[kind] = op
	needSchedule := !m.scheduled
	m.scheduled = true
	m.mu.Unlock()
	if needSchedule {
		m.sched.Schedule(m.flush)
	}
}

func (m *Manager) flush() {
	m.mu.Lock()
	ops := m.pending
	m.pending = make(map[Kind]func(), 2)
	m.scheduled = false
	notify := m.onFlush
	m.mu.Unlock()

	kinds := make([]Kind, 0, len(ops))
	for _, k := range []Kind{KindPause, KindTracking} {
		if op, ok := ops[k]; ok {
			op()
			kinds = append(kinds, k)
		}
	}
	if notify != nil && len(kinds) > 0 {
		notify(kinds)
	}
}
