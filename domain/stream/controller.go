package stream

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/domain/decode"
	"github.com/soocke/scansurface-go/domain/geometry"
	"github.com/soocke/scansurface-go/domain/scan"
	"github.com/soocke/scansurface-go/domain/surface"
)

// pauseCaptureTimeout bounds the final frame grab. It runs under the
// controller lock on the caller's goroutine, usually the UI thread.
const pauseCaptureTimeout = 250 * time.Millisecond

// Options wires a Controller to its collaborators. Acquire and Decoders are
// required; the rest may be nil.
type Options struct {
	Acquire  camera.Acquirer
	Decoders decode.Factory
	Surfaces *surface.Manager
	// Display reports the on-screen size of the video box. Nil uses the
	// stream resolution (no cropping).
	Display         func() image.Point
	DefaultRenderer surface.RenderFunc
	Tracking        TrackingMode
	// TrackingDelay and IdleDelay override scan.MinDelayFor when positive.
	TrackingDelay time.Duration
	IdleDelay     time.Duration
	OnDetect      func(decode.Detection)
	OnLocate      func(geometry.Location)
	Logger        *slog.Logger
}

// Controller owns the camera handle and keeps the scan loop and surfaces in
// step with the enabled flag, camera options and tracking mode. The stream
// starts enabled with the camera off; call Configure to open a device.
type Controller struct {
	acquire   camera.Acquirer
	decoders  decode.Factory
	surfaces  *surface.Manager
	display   func() image.Point
	renderer  surface.RenderFunc
	trackDly  time.Duration
	idleDly   time.Duration
	onDetect  func(decode.Detection)
	onLocate  func(geometry.Location)
	logger    *slog.Logger
	ctx       context.Context
	ctxCancel context.CancelFunc

	mu            sync.Mutex
	enabled       bool
	camOpts       camera.Options
	tracking      TrackingMode
	handle        camera.Handle
	caps          camera.Capabilities
	gen           uint64
	cancelAcquire context.CancelFunc
	loop          *scan.Loop
	dec           decode.Decoder
	closed        bool
	listeners     []InitListener
}

// New returns an idle controller.
func New(opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		acquire:   opts.Acquire,
		decoders:  opts.Decoders,
		surfaces:  opts.Surfaces,
		display:   opts.Display,
		renderer:  opts.DefaultRenderer,
		trackDly:  opts.TrackingDelay,
		idleDly:   opts.IdleDelay,
		onDetect:  opts.OnDetect,
		onLocate:  opts.OnLocate,
		logger:    opts.Logger,
		ctx:       ctx,
		ctxCancel: cancel,
		enabled:   true,
		camOpts:   camera.Options{Selector: camera.SelectorOff},
		tracking:  opts.Tracking,
		caps:      camera.Capabilities{},
	}
}

// AddInitListener registers l for every future InitEvent.
func (c *Controller) AddInitListener(l InitListener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Configure (re)initializes the stream with opts. Any current handle is
// released before a new one is requested. With SelectorOff the returned
// event is already settled with empty capabilities.
func (c *Controller) Configure(opts camera.Options) InitEvent {
	if opts.Selector == "" {
		opts.Selector = camera.SelectorAuto
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ev := newInitEvent(opts)
		ev.resolve(nil, ErrClosed)
		return ev
	}
	c.apply(func() { c.camOpts = opts })
	ev := c.initLocked()
	listeners := append([]InitListener(nil), c.listeners...)
	c.mu.Unlock()
	c.publish(ev, listeners)
	return ev
}

// SetEnabled turns streaming on or off. Disabling freezes the last frame on
// the pause surface and releases the device; enabling re-acquires it.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	if c.closed || c.enabled == enabled {
		c.mu.Unlock()
		return
	}
	c.apply(func() { c.enabled = enabled })
	ev := c.initLocked()
	listeners := append([]InitListener(nil), c.listeners...)
	c.mu.Unlock()
	c.publish(ev, listeners)
}

// SetTracking switches the overlay mode. A running loop is restarted because
// the sampling interval depends on it.
func (c *Controller) SetTracking(mode TrackingMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.tracking = mode
	if c.loop != nil {
		c.stopLoopLocked()
		if c.surfaces != nil {
			c.surfaces.ClearTrackingLayer()
		}
		c.startLoopLocked()
	}
}

// Close tears the controller down: the loop is cancelled, the handle
// released and any acquisition still in flight stops its handle on arrival.
// Safe to call repeatedly.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.stopLoopLocked()
	c.releaseLocked()
	c.closed = true
	c.gen++
	if c.cancelAcquire != nil {
		c.cancelAcquire()
		c.cancelAcquire = nil
	}
	c.ctxCancel()
	dec := c.dec
	c.dec = nil
	c.mu.Unlock()

	if dec != nil {
		return dec.Close()
	}
	return nil
}

// Capabilities returns the capabilities of the live handle (empty if none).
func (c *Controller) Capabilities() camera.Capabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caps.Clone()
}

// HasHandle reports whether a camera handle is installed.
func (c *Controller) HasHandle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// ShouldStream reports whether the stream is wanted (enabled and not off).
func (c *Controller) ShouldStream() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldStream()
}

// ShouldScan reports whether the scan loop runs.
func (c *Controller) ShouldScan() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldScan()
}

// CameraOptions returns the options of the latest Configure call.
func (c *Controller) CameraOptions() camera.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.camOpts
}

// Tracking returns the current overlay mode.
func (c *Controller) Tracking() TrackingMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracking
}

// LatestFrame returns the newest frame seen by the scan loop, or nil.
func (c *Controller) LatestFrame() *image.RGBA {
	c.mu.Lock()
	l := c.loop
	c.mu.Unlock()
	return l.LatestFrame()
}

// ScanStats returns counters of the running loop.
func (c *Controller) ScanStats() scan.Stats {
	c.mu.Lock()
	l := c.loop
	c.mu.Unlock()
	return l.Stats()
}

func (c *Controller) shouldStream() bool {
	return !c.closed && c.enabled && c.camOpts.Selector != camera.SelectorOff
}

func (c *Controller) shouldScan() bool {
	return c.shouldStream() && c.handle != nil
}

// apply runs mutate and reacts to the resulting changes of the derived
// stream/scan predicates. Callers hold c.mu.
func (c *Controller) apply(mutate func()) {
	prevStream, prevScan := c.shouldStream(), c.shouldScan()
	mutate()
	nowStream, nowScan := c.shouldStream(), c.shouldScan()

	if prevScan && !nowScan {
		c.stopLoopLocked()
	}
	if prevStream && !nowStream {
		c.paintPauseLocked()
	}
	if !prevScan && nowScan {
		if c.surfaces != nil {
			c.surfaces.ClearPauseFrame()
			c.surfaces.ClearTrackingLayer()
		}
		c.startLoopLocked()
	}
}

// initLocked releases the current handle and, if streaming is wanted,
// starts acquiring a new one under a fresh generation.
func (c *Controller) initLocked() InitEvent {
	c.gen++
	if c.cancelAcquire != nil {
		c.cancelAcquire()
		c.cancelAcquire = nil
	}
	c.releaseLocked()

	ev := newInitEvent(c.camOpts)
	if !c.shouldStream() {
		ev.resolve(camera.Capabilities{}, nil)
		return ev
	}
	if c.acquire == nil {
		ev.resolve(nil, fmt.Errorf("%w: no acquisition routine", ErrAcquisition))
		return ev
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelAcquire = cancel
	go c.acquireAsync(ctx, cancel, c.gen, c.camOpts, ev)
	return ev
}

func (c *Controller) acquireAsync(ctx context.Context, cancel context.CancelFunc, gen uint64, opts camera.Options, ev InitEvent) {
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Error("acquire panic", "error", r, "stack", string(debug.Stack()))
			}
			ev.resolve(nil, fmt.Errorf("%w: panic: %v", ErrAcquisition, r))
		}
	}()

	h, err := c.acquire(ctx, opts)
	if err == nil && h == nil {
		err = fmt.Errorf("no handle returned")
	}

	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		if h != nil {
			if stopErr := h.Stop(); stopErr != nil && c.logger != nil {
				c.logger.Debug("stream.stale stop", "error", stopErr)
			}
		}
		if c.logger != nil {
			c.logger.Debug("stream.acquire stale", "event", ev.ID.String(), "selector", string(opts.Selector), "error", err)
		}
		// A superseded acquisition is not a failure, whatever the acquirer
		// returned after its context was cancelled.
		ev.resolve(camera.Capabilities{}, nil)
		return
	}
	c.cancelAcquire = nil
	if err != nil {
		c.mu.Unlock()
		err = fmt.Errorf("%w: %w", ErrAcquisition, err)
		if c.logger != nil {
			c.logger.Warn("stream.acquire", "event", ev.ID.String(), "selector", string(opts.Selector), "error", err)
		}
		ev.resolve(nil, err)
		return
	}
	c.apply(func() {
		c.handle = h
		c.caps = h.Capabilities()
	})
	caps := c.caps.Clone()
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("stream.acquire", "event", ev.ID.String(), "handle", h.ID(), "selector", string(opts.Selector), "torch", opts.Torch)
	}
	ev.resolve(caps, nil)
}

// releaseLocked stops the loop (it reads from the handle) and then the handle.
func (c *Controller) releaseLocked() {
	c.caps = camera.Capabilities{}
	if c.handle == nil {
		return
	}
	c.stopLoopLocked()
	h := c.handle
	c.handle = nil
	if err := h.Stop(); err != nil && c.logger != nil {
		c.logger.Debug("stream.release", "handle", h.ID(), "error", err)
	}
}

func (c *Controller) paintPauseLocked() {
	if c.handle == nil || c.surfaces == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pauseCaptureTimeout)
	defer cancel()
	frame, err := c.handle.CaptureFrame(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("stream.pause capture", "handle", c.handle.ID(), "error", err)
		}
		return
	}
	c.surfaces.PaintPauseFrame(frame)
}

func (c *Controller) startLoopLocked() {
	c.stopLoopLocked()
	if c.handle == nil {
		return
	}
	dec, err := c.decoderLocked()
	if err != nil {
		if c.logger != nil {
			c.logger.Error("stream.decoder", "error", err)
		}
		return
	}
	h := c.handle
	render := c.tracking.renderer(c.renderer)
	surfaces, display, onLocate := c.surfaces, c.display, c.onLocate
	cfg := scan.Config{
		MinDelay: c.minDelayLocked(),
		OnDetect: c.onDetect,
		OnLocate: func(loc geometry.Location) {
			if surfaces != nil {
				surfaces.RepaintTrackingLayer(loc, displayGeometry(display, h), render)
			}
			if onLocate != nil {
				onLocate(loc)
			}
		},
	}
	c.loop = scan.Start(c.ctx, dec, h, cfg, c.logger)
	if c.logger != nil {
		c.logger.Debug("stream.scan start", "handle", h.ID(), "min_delay", cfg.MinDelay, "tracking", c.tracking.String())
	}
}

func (c *Controller) minDelayLocked() time.Duration {
	if c.tracking.Enabled() && c.trackDly > 0 {
		return c.trackDly
	}
	if !c.tracking.Enabled() && c.idleDly > 0 {
		return c.idleDly
	}
	return scan.MinDelayFor(c.tracking.Enabled())
}

func (c *Controller) stopLoopLocked() {
	if c.loop == nil {
		return
	}
	c.loop.Cancel()
	c.loop = nil
}

func (c *Controller) decoderLocked() (decode.Decoder, error) {
	if c.dec != nil {
		return c.dec, nil
	}
	if c.decoders == nil {
		return nil, fmt.Errorf("stream: no decoder factory")
	}
	dec, err := c.decoders()
	if err != nil {
		return nil, fmt.Errorf("stream: create decoder: %w", err)
	}
	c.dec = dec
	return dec, nil
}

func (c *Controller) publish(ev InitEvent, listeners []InitListener) {
	if c.logger != nil {
		c.logger.Debug("stream.init", "event", ev.ID.String(), "selector", string(ev.Options.Selector), "torch", ev.Options.Torch)
	}
	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil && c.logger != nil {
					c.logger.Error("init listener panic", "error", r)
				}
			}()
			l(ev)
		}()
	}
}

// displayGeometry samples the display box and the stream resolution.
func displayGeometry(display func() image.Point, h camera.Handle) geometry.DisplayGeometry {
	res := h.Resolution()
	d := res
	if display != nil {
		d = display()
	}
	return geometry.DisplayGeometry{
		DisplayWidth:     d.X,
		DisplayHeight:    d.Y,
		ResolutionWidth:  res.X,
		ResolutionHeight: res.Y,
	}
}
