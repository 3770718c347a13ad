package presenter

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/soocke/scansurface-go/domain/decode"
	"github.com/soocke/scansurface-go/domain/surface"
	"github.com/soocke/scansurface-go/ui/model"
)

type mockSource struct {
	scanning bool
	frame    *image.RGBA
}

func (s *mockSource) ShouldScan() bool         { return s.scanning }
func (s *mockSource) LatestFrame() *image.RGBA { return s.frame }

type mockScanView struct {
	previews  []image.Image
	detection string
	history   []string
}

func (v *mockScanView) UpdatePreview(img image.Image) { v.previews = append(v.previews, img) }
func (v *mockScanView) SetDetection(s string)         { v.detection = s }
func (v *mockScanView) SetHistory(lines []string)     { v.history = lines }

type countSink struct{ n int }

func (c *countSink) OnDetections(n int) { c.n += n }

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestScanPresenter_DetectionsReachLogAndView(t *testing.T) {
	view := &mockScanView{}
	log := model.NewDetectionLog(10)
	counter := &countSink{}
	p := NewScanPresenter(&mockSource{}, nil, view, log, counter, nil, nil)

	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	p.OnDetect(decode.Detection{Payload: "first", Format: "QR_CODE", DecodedAt: at})
	p.OnDetect(decode.Detection{Payload: "second", Format: "QR_CODE", DecodedAt: at})
	p.ProcessFrame()

	if counter.n != 2 || log.Total() != 2 {
		t.Fatalf("counter=%d total=%d", counter.n, log.Total())
	}
	if view.detection != "QR_CODE: second" {
		t.Fatalf("detection label = %q", view.detection)
	}
	if len(view.history) != 2 || view.history[0] != "15:04:05  second" {
		t.Fatalf("history = %v", view.history)
	}

	// Nothing queued: no further detection updates.
	view.detection = ""
	p.ProcessFrame()
	if view.detection != "" {
		t.Fatal("idle tick must not touch the detection label")
	}
}

func TestScanPresenter_QueueDropsOldest(t *testing.T) {
	log := model.NewDetectionLog(100)
	p := NewScanPresenter(&mockSource{}, nil, &mockScanView{}, log, nil, nil, nil)
	for i := 0; i < detectionQueueSize+5; i++ {
		p.OnDetect(decode.Detection{Payload: fmt.Sprint(i)})
	}
	p.ProcessFrame()
	items := log.Items()
	if len(items) != detectionQueueSize {
		t.Fatalf("kept %d detections, want %d", len(items), detectionQueueSize)
	}
	if items[len(items)-1].Payload != fmt.Sprint(detectionQueueSize+4) {
		t.Fatalf("newest detection lost: %v", items[len(items)-1].Payload)
	}
}

func TestScanPresenter_PreviewUsesLiveFrameThenPauseFrame(t *testing.T) {
	q := surface.NewQueueScheduler()
	layers := surface.NewManager(q, nil)
	src := &mockSource{scanning: true, frame: filled(8, 8, color.RGBA{R: 255, A: 255})}
	view := &mockScanView{}
	p := NewScanPresenter(src, layers, view, nil, nil, func() image.Point { return image.Pt(4, 4) }, nil)

	p.ProcessFrame()
	if len(view.previews) != 1 {
		t.Fatalf("expected first preview, got %d", len(view.previews))
	}
	if c := view.previews[0].(*image.RGBA).RGBAAt(1, 1); c.R != 255 {
		t.Fatalf("live pixel = %v", c)
	}

	// Same frame, nothing dirty: no recompose.
	p.ProcessFrame()
	if len(view.previews) != 1 {
		t.Fatalf("unchanged frame recomposed: %d", len(view.previews))
	}

	// Streaming stops; the frozen pause frame is shown instead.
	layers.PaintPauseFrame(filled(8, 8, color.RGBA{B: 255, A: 255}))
	q.Flush()
	p.MarkDirty()
	src.scanning = false
	p.ProcessFrame()
	if len(view.previews) != 2 {
		t.Fatalf("expected recompose, got %d", len(view.previews))
	}
	img := view.previews[1].(*image.RGBA)
	if img.Bounds().Size() != image.Pt(4, 4) {
		t.Fatalf("preview size = %v", img.Bounds().Size())
	}
	if c := img.RGBAAt(2, 2); c.B != 255 || c.R != 0 {
		t.Fatalf("pause pixel = %v", c)
	}
}

func TestFormatHistory(t *testing.T) {
	lines := FormatHistory([]decode.Detection{{Payload: "a\nb"}, {Payload: "c"}})
	if len(lines) != 2 || lines[0] != "c" || lines[1] != "a b" {
		t.Fatalf("lines = %v", lines)
	}
	if FormatDetection(decode.Detection{Payload: "x"}) != "x" {
		t.Fatal("payload without format should print bare")
	}
}
