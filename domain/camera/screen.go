package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vova616/screenshot"
)

// grabFunc captures the given screen rectangle.
type grabFunc func(image.Rectangle) (*image.RGBA, error)

// boundsFunc reports the capturable screen area.
type boundsFunc func() (image.Rectangle, error)

// NewScreenAcquirer returns an Acquirer backed by desktop screen capture.
// auto and rear open the whole primary display; front opens a centred 4:3
// region, standing in for a user-facing camera.
func NewScreenAcquirer(logger *slog.Logger) Acquirer {
	return newScreenAcquirer(logger, screenshot.ScreenRect, screenshot.CaptureRect)
}

func newScreenAcquirer(logger *slog.Logger, bounds boundsFunc, grab grabFunc) Acquirer {
	return func(ctx context.Context, opts Options) (Handle, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		screen, err := bounds()
		if err != nil {
			return nil, fmt.Errorf("camera: screen bounds: %w", err)
		}
		if screen.Empty() {
			return nil, fmt.Errorf("camera: invalid screen size %v", screen)
		}
		var region image.Rectangle
		facing := "environment"
		switch opts.Selector {
		case SelectorAuto, SelectorRear:
			region = screen
		case SelectorFront:
			region = frontRegion(screen)
			facing = "user"
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownSelector, opts.Selector)
		}
		if opts.Torch && logger != nil {
			logger.Warn("camera.torch unsupported", "device", "screen", "selector", string(opts.Selector))
		}
		h := &screenHandle{
			id:     uuid.NewString(),
			region: region,
			grab:   grab,
			caps: Capabilities{
				"device":     "screen",
				"facingMode": facing,
				"resolution": fmt.Sprintf("%dx%d", region.Dx(), region.Dy()),
				"torch":      "unsupported",
			},
		}
		if logger != nil {
			logger.Debug("camera.open", "id", h.id, "selector", string(opts.Selector), "region", region.String())
		}
		return h, nil
	}
}

// frontRegion returns the largest centred 4:3 rectangle at half the screen height.
func frontRegion(screen image.Rectangle) image.Rectangle {
	h := screen.Dy() / 2
	w := h * 4 / 3
	if w > screen.Dx() {
		w = screen.Dx()
		h = w * 3 / 4
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x0 := screen.Min.X + (screen.Dx()-w)/2
	y0 := screen.Min.Y + (screen.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}

type screenHandle struct {
	id      string
	region  image.Rectangle
	grab    grabFunc
	caps    Capabilities
	stopped atomic.Bool

	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	lastCapture  atomic.Int64
}

func (h *screenHandle) ID() string                 { return h.id }
func (h *screenHandle) Capabilities() Capabilities { return h.caps.Clone() }
func (h *screenHandle) Resolution() image.Point {
	return image.Pt(h.region.Dx(), h.region.Dy())
}

func (h *screenHandle) CaptureFrame(ctx context.Context) (*image.RGBA, error) {
	if h.stopped.Load() {
		return nil, ErrHandleStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	img, err := h.grab(h.region)
	if err != nil {
		h.failures.Add(1)
		return nil, fmt.Errorf("camera: capture %v: %w", h.region, err)
	}
	if img == nil {
		h.failures.Add(1)
		return nil, fmt.Errorf("camera: capture %v returned no image", h.region)
	}
	h.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	h.captures.Add(1)
	h.lastCapture.Store(time.Now().UnixNano())
	return normalizeOrigin(img), nil
}

func (h *screenHandle) Stop() error {
	h.stopped.Store(true)
	return nil
}

// Stats reports capture counters for this handle.
func (h *screenHandle) Stats() Stats {
	captures := h.captures.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(h.captureNanos.Load() / captures)
	}
	var last time.Time
	if ns := h.lastCapture.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return Stats{Captures: captures, Failures: h.failures.Load(), AvgCapture: avg, LastCapture: last}
}

// normalizeOrigin rebases img so its bounds start at (0,0). Screen grabs of a
// sub-rectangle may keep the screen offset.
func normalizeOrigin(img *image.RGBA) *image.RGBA {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	return &image.RGBA{
		Pix:    img.Pix,
		Stride: img.Stride,
		Rect:   image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()),
	}
}
