package presenter

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/soocke/scansurface-go/domain/decode"
	"github.com/soocke/scansurface-go/domain/surface"
	"github.com/soocke/scansurface-go/ui/images"
	"github.com/soocke/scansurface-go/ui/model"
)

const detectionQueueSize = 16

// FrameSource supplies the newest frame of the running scan loop.
type FrameSource interface {
	ShouldScan() bool
	LatestFrame() *image.RGBA
}

// Layers exposes the pause and tracking surfaces.
type Layers interface {
	Pause() *surface.Surface
	Tracking() *surface.Surface
}

// DetectionCounter receives the number of detections handled per tick.
type DetectionCounter interface {
	OnDetections(n int)
}

// ScanView describes the UI surface updated by the presenter.
type ScanView interface {
	UpdatePreview(img image.Image)
	SetDetection(text string)
	SetHistory(lines []string)
}

// ScanPresenter turns scan results into view updates: detections go to the
// history log and the preview is composed from the live frame (or the frozen
// pause frame) with the tracking layer on top.
type ScanPresenter struct {
	Source   FrameSource
	Layers   Layers
	View     ScanView
	Log      *model.DetectionLog
	Counter  DetectionCounter
	Display  func() image.Point
	logger   *slog.Logger
	detectCh chan decode.Detection

	dirty     atomic.Bool
	lastFrame *image.RGBA
	lastScan  bool
}

// NewScanPresenter constructs a scan presenter.
func NewScanPresenter(source FrameSource, layers Layers, view ScanView, log *model.DetectionLog, counter DetectionCounter, display func() image.Point, logger *slog.Logger) *ScanPresenter {
	p := &ScanPresenter{
		Source:   source,
		Layers:   layers,
		View:     view,
		Log:      log,
		Counter:  counter,
		Display:  display,
		logger:   logger,
		detectCh: make(chan decode.Detection, detectionQueueSize),
	}
	p.dirty.Store(true)
	return p
}

// OnDetect queues d for the next ProcessFrame. Called from the scan loop
// goroutine; never blocks. When the queue is full the oldest entry is dropped.
func (p *ScanPresenter) OnDetect(d decode.Detection) {
	if p == nil {
		return
	}
	select {
	case p.detectCh <- d:
	default:
		select {
		case <-p.detectCh:
		default:
		}
		select {
		case p.detectCh <- d:
		default:
		}
	}
}

// MarkDirty forces the next ProcessFrame to recompose the preview. Hook it to
// surface.Manager.OnFlush.
func (p *ScanPresenter) MarkDirty() {
	if p != nil {
		p.dirty.Store(true)
	}
}

// ProcessFrame drains queued detections and refreshes the preview.
func (p *ScanPresenter) ProcessFrame() {
	if p == nil || p.View == nil {
		return
	}
	p.drainDetections()
	p.refreshPreview()
}

func (p *ScanPresenter) drainDetections() {
	n := 0
	changed := false
	var latest decode.Detection
drain:
	for {
		select {
		case d := <-p.detectCh:
			n++
			latest = d
			if p.Log != nil && p.Log.Add(d) {
				changed = true
			}
		default:
			break drain
		}
	}
	if n == 0 {
		return
	}
	if p.Counter != nil {
		p.Counter.OnDetections(n)
	}
	if p.logger != nil {
		p.logger.Debug("scan.detect", "count", n, "format", latest.Format, "payload_len", len(latest.Payload))
	}
	p.View.SetDetection(FormatDetection(latest))
	if changed && p.Log != nil {
		p.View.SetHistory(FormatHistory(p.Log.Items()))
	}
}

func (p *ScanPresenter) refreshPreview() {
	scanning := p.Source != nil && p.Source.ShouldScan()
	var frame *image.RGBA
	if scanning {
		frame = p.Source.LatestFrame()
	}
	if !p.dirty.Swap(false) && frame == p.lastFrame && scanning == p.lastScan {
		return
	}
	p.lastFrame = frame
	p.lastScan = scanning

	var base, overlay image.Image
	if frame != nil {
		base = frame
	}
	if p.Layers != nil {
		if pl := p.Layers.Pause(); base == nil && !pl.Blank() {
			if pause := pl.Snapshot(); pause != nil {
				base = pause
			}
		}
		if scanning {
			if tr := p.Layers.Tracking().Snapshot(); tr != nil {
				overlay = tr
			}
		}
	}
	size := image.Pt(1, 1)
	if p.Display != nil {
		size = p.Display()
	} else if base != nil {
		size = base.Bounds().Size()
	}
	p.View.UpdatePreview(images.Compose(base, overlay, size.X, size.Y))
}

// FormatDetection renders a detection for the result label.
func FormatDetection(d decode.Detection) string {
	if d.Format == "" {
		return d.Payload
	}
	return d.Format + ": " + d.Payload
}

// FormatHistory renders entries newest first, one per line.
func FormatHistory(items []decode.Detection) []string {
	out := make([]string, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		d := items[i]
		payload := strings.ReplaceAll(d.Payload, "\n", " ")
		if d.DecodedAt.IsZero() {
			out = append(out, payload)
			continue
		}
		out = append(out, fmt.Sprintf("%s  %s", d.DecodedAt.Format("15:04:05"), payload))
	}
	return out
}
