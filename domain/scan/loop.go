package scan

import (
	"context"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/domain/decode"
	"github.com/soocke/scansurface-go/domain/geometry"
	"github.com/soocke/scansurface-go/domain/platform"
)

const (
	// TrackingMinDelay paces the loop at ~25fps so the overlay follows the code.
	TrackingMinDelay = 40 * time.Millisecond
	// IdleMinDelay is used when only detection matters.
	IdleMinDelay = 500 * time.Millisecond

	statsLogInterval = 5 * time.Second
	highResThreshold = 100 * time.Millisecond
)

// MinDelayFor returns the sampling interval for the given tracking state.
func MinDelayFor(tracking bool) time.Duration {
	if tracking {
		return TrackingMinDelay
	}
	return IdleMinDelay
}

// FrameSource provides frames on demand. camera.Handle satisfies it.
type FrameSource interface {
	CaptureFrame(ctx context.Context) (*image.RGBA, error)
}

// Config is fixed for the lifetime of one loop run.
type Config struct {
	MinDelay time.Duration
	OnDetect func(decode.Detection)
	OnLocate func(geometry.Location)
}

// Loop is a running scan loop. The zero value is not usable; use Start.
type Loop struct {
	cfg    Config
	dec    decode.Decoder
	src    FrameSource
	logger *slog.Logger
	clk    clock

	cancel     context.CancelFunc
	done       chan struct{}
	cancelOnce sync.Once

	latest       atomic.Pointer[image.RGBA]
	iterations   atomic.Uint64
	detections   atomic.Uint64
	failures     atomic.Uint64
	decodeNanos  atomic.Uint64
	lastDetected atomic.Int64
}

// Start launches a loop that samples src at most every cfg.MinDelay, submits
// each frame to dec and waits for the result before scheduling the next
// round. OnLocate fires every round, OnDetect only when a payload decoded.
// Handlers run on the loop goroutine and must not call Cancel.
func Start(ctx context.Context, dec decode.Decoder, src FrameSource, cfg Config, logger *slog.Logger) *Loop {
	return start(ctx, dec, src, cfg, logger, realClock{})
}

func start(ctx context.Context, dec decode.Decoder, src FrameSource, cfg Config, logger *slog.Logger, clk clock) *Loop {
	if cfg.MinDelay < 0 {
		cfg.MinDelay = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{cfg: cfg, dec: dec, src: src, logger: logger, clk: clk, cancel: cancel, done: make(chan struct{})}
	go l.run(ctx)
	return l
}

// Cancel stops the loop and waits for its goroutine to exit. No handler runs
// after Cancel returns. Safe to call repeatedly and on a nil Loop.
func (l *Loop) Cancel() {
	if l == nil {
		return
	}
	l.cancelOnce.Do(l.cancel)
	<-l.done
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} { return l.done }

// LatestFrame returns the most recently captured frame, or nil.
func (l *Loop) LatestFrame() *image.RGBA {
	if l == nil {
		return nil
	}
	return l.latest.Load()
}

// Stats returns loop counters.
func (l *Loop) Stats() Stats {
	if l == nil {
		return Stats{}
	}
	iterations := l.iterations.Load()
	var avg time.Duration
	if iterations > 0 {
		avg = time.Duration(l.decodeNanos.Load() / iterations)
	}
	var last time.Time
	if ns := l.lastDetected.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	st := Stats{
		Iterations:   iterations,
		Detections:   l.detections.Load(),
		Failures:     l.failures.Load(),
		AvgDecode:    avg,
		LastDetected: last,
		MinDelay:     l.cfg.MinDelay,
	}
	if r, ok := l.src.(camera.StatsReporter); ok {
		st.Capture = r.Stats()
	}
	return st
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil && l.logger != nil {
			l.logger.Error("scan loop panic", "error", r, "stack", string(debug.Stack()))
		}
	}()
	if l.cfg.MinDelay < highResThreshold {
		release := platform.HoldHighResTimer()
		defer release()
	}

	lastLog := l.clk.Now()
	var last time.Time
	for {
		if !last.IsZero() {
			if wait := l.cfg.MinDelay - l.clk.Now().Sub(last); wait > 0 {
				if err := l.clk.Sleep(ctx, wait); err != nil {
					return
				}
			}
		}
		if ctx.Err() != nil {
			return
		}
		last = l.clk.Now()
		if !l.iterate(ctx) {
			return
		}
		if now := l.clk.Now(); now.Sub(lastLog) >= statsLogInterval {
			lastLog = now
			l.logStats()
		}
	}
}

// iterate runs one capture/decode round. It returns false once ctx is done.
func (l *Loop) iterate(ctx context.Context) bool {
	frame, err := l.src.CaptureFrame(ctx)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		l.failures.Add(1)
		if l.logger != nil {
			l.logger.Debug("scan.capture", "error", err)
		}
		l.iterations.Add(1)
		l.locate(geometry.NoLocation)
		return true
	}
	l.latest.Store(frame)

	start := l.clk.Now()
	res, err := l.dec.Decode(ctx, frame)
	l.decodeNanos.Add(uint64(l.clk.Now().Sub(start).Nanoseconds()))
	l.iterations.Add(1)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		l.failures.Add(1)
		if l.logger != nil {
			l.logger.Debug("scan.decode", "error", err)
		}
		res = decode.Result{}
	}

	l.locate(res.Location)
	if res.Detection != nil && ctx.Err() == nil {
		l.detections.Add(1)
		l.lastDetected.Store(time.Now().UnixNano())
		l.detect(*res.Detection)
	}
	return ctx.Err() == nil
}

func (l *Loop) locate(loc geometry.Location) {
	if l.cfg.OnLocate == nil {
		return
	}
	defer l.recoverHandler("locate")
	l.cfg.OnLocate(loc)
}

func (l *Loop) detect(d decode.Detection) {
	if l.cfg.OnDetect == nil {
		return
	}
	defer l.recoverHandler("detect")
	l.cfg.OnDetect(d)
}

func (l *Loop) recoverHandler(name string) {
	if r := recover(); r != nil && l.logger != nil {
		l.logger.Error("scan handler panic", "handler", name, "error", r)
	}
}

func (l *Loop) logStats() {
	if l.logger == nil {
		return
	}
	stats := l.Stats()
	var frameBytes uint64
	if f := l.latest.Load(); f != nil {
		frameBytes = uint64(len(f.Pix))
	}
	l.logger.Debug("scan.stats",
		"iterations", stats.Iterations,
		"detections", stats.Detections,
		"failures", stats.Failures,
		"avg_decode", stats.AvgDecode,
		"min_delay", stats.MinDelay,
		"frame_size", humanize.Bytes(frameBytes),
		"captures", stats.Capture.Captures,
		"capture_failures", stats.Capture.Failures,
		"avg_capture", stats.Capture.AvgCapture,
	)
}
