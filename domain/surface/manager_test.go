package surface

import (
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/scansurface-go/domain/geometry"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

var testGeometry = geometry.DisplayGeometry{DisplayWidth: 320, DisplayHeight: 320, ResolutionWidth: 640, ResolutionHeight: 480}

func TestManager_WritesWaitForTick(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)

	m.PaintPauseFrame(solidFrame(8, 6, color.RGBA{R: 255, A: 255}))
	assert.Equal(t, image.Point{}, m.Pause().Size(), "paint must not happen before the tick")
	assert.Equal(t, 1, q.Pending())

	q.Flush()
	assert.Equal(t, image.Pt(8, 6), m.Pause().Size())
	snap := m.Pause().Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, snap.RGBAAt(3, 3))
}

func TestManager_LastWriteWins(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)

	m.PaintPauseFrame(solidFrame(4, 4, color.RGBA{R: 255, A: 255}))
	m.PaintPauseFrame(solidFrame(2, 2, color.RGBA{B: 255, A: 255}))
	m.ClearTrackingLayer()
	m.ClearTrackingLayer()
	assert.Equal(t, 1, q.Pending(), "one flush per tick regardless of write count")

	q.Flush()
	assert.Equal(t, image.Pt(2, 2), m.Pause().Size())
	assert.Equal(t, color.RGBA{B: 255, A: 255}, m.Pause().Snapshot().RGBAAt(0, 0))
}

func TestManager_ClearThenPaintInSameTick(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)
	m.ClearPauseFrame()
	m.PaintPauseFrame(solidFrame(3, 3, color.RGBA{G: 255, A: 255}))
	q.Flush()
	assert.False(t, m.Pause().Blank())

	m.PaintPauseFrame(solidFrame(3, 3, color.RGBA{G: 255, A: 255}))
	m.ClearPauseFrame()
	q.Flush()
	assert.True(t, m.Pause().Blank())
}

func TestManager_ClearTrackingIsIdempotent(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)
	loc := geometry.Location{geometry.TopLeft: {X: 100, Y: 100}, geometry.TopRight: {X: 500, Y: 100}, geometry.BottomRight: {X: 500, Y: 400}, geometry.BottomLeft: {X: 100, Y: 400}}
	m.RepaintTrackingLayer(loc, testGeometry, OutlineRenderer(color.RGBA{R: 255, A: 255}, 2))
	q.Flush()
	require.False(t, m.Tracking().Blank())

	m.ClearTrackingLayer()
	q.Flush()
	once := m.Tracking().Snapshot()

	m.ClearTrackingLayer()
	q.Flush()
	twice := m.Tracking().Snapshot()

	assert.Equal(t, once.Rect, twice.Rect)
	assert.Equal(t, once.Pix, twice.Pix)
	assert.True(t, m.Tracking().Blank())
}

func TestManager_RepaintResizesToDisplayAndMaps(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)
	var got geometry.Location
	var bounds image.Rectangle
	render := func(mapped geometry.Location, dst draw.Image) {
		got = mapped
		bounds = dst.Bounds()
	}
	m.RepaintTrackingLayer(geometry.Location{"c": {X: 320, Y: 240}}, testGeometry, render)
	assert.Nil(t, got, "render runs on the tick")
	q.Flush()
	assert.Equal(t, image.Rect(0, 0, 320, 320), bounds)
	assert.Equal(t, geometry.Point{X: 160, Y: 160}, got["c"])
	assert.Equal(t, image.Pt(320, 320), m.Tracking().Size())
}

func TestManager_NoLocationOrNoRendererClears(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)
	loc := geometry.Location{geometry.TopLeft: {X: 0, Y: 0}, geometry.BottomRight: {X: 600, Y: 400}}
	outline := OutlineRenderer(color.White, 3)

	m.RepaintTrackingLayer(loc, testGeometry, outline)
	q.Flush()
	require.False(t, m.Tracking().Blank())

	m.RepaintTrackingLayer(geometry.NoLocation, testGeometry, outline)
	q.Flush()
	assert.True(t, m.Tracking().Blank())

	m.RepaintTrackingLayer(loc, testGeometry, outline)
	q.Flush()
	require.False(t, m.Tracking().Blank())
	m.RepaintTrackingLayer(loc, testGeometry, nil)
	q.Flush()
	assert.True(t, m.Tracking().Blank())
}

func TestManager_CustomRendererNotCalledWithoutLocation(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)
	calls := 0
	m.RepaintTrackingLayer(geometry.NoLocation, testGeometry, func(geometry.Location, draw.Image) { calls++ })
	q.Flush()
	assert.Zero(t, calls)
}

func TestManager_InvalidGeometryClears(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)
	calls := 0
	g := testGeometry
	g.ResolutionWidth = 0
	m.RepaintTrackingLayer(geometry.Location{"a": {}}, g, func(geometry.Location, draw.Image) { calls++ })
	q.Flush()
	assert.Zero(t, calls)
}

func TestManager_RendererPanicIsContained(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)
	m.RepaintTrackingLayer(geometry.Location{"a": {X: 1, Y: 1}}, testGeometry, func(geometry.Location, draw.Image) { panic("boom") })
	assert.NotPanics(t, q.Flush)
}

func TestManager_OnFlushReportsKinds(t *testing.T) {
	q := NewQueueScheduler()
	m := NewManager(q, nil)
	var seen [][]Kind
	m.OnFlush(func(kinds []Kind) { seen = append(seen, kinds) })
	m.ClearTrackingLayer()
	m.ClearPauseFrame()
	q.Flush()
	q.Flush()
	require.Len(t, seen, 1)
	assert.Equal(t, []Kind{KindPause, KindTracking}, seen[0])
}

func TestSurface_PaintIsNeverSeenHalfDone(t *testing.T) {
	var s Surface
	red := color.RGBA{R: 255, A: 255}
	frame := solidFrame(16, 16, red)
	s.paint(frame)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			s.paint(frame)
		}
	}()
	for {
		select {
		case <-done:
			return
		default:
		}
		snap := s.Snapshot()
		require.NotNil(t, snap)
		require.Equal(t, red, snap.RGBAAt(8, 8), "snapshot taken between resize and draw")
	}
}

func TestTickerScheduler_FlushesOnTick(t *testing.T) {
	s := NewTickerScheduler(5 * time.Millisecond)
	defer s.Stop()
	var ran atomic.Int32
	s.Schedule(func() { ran.Add(1) })
	assert.Eventually(t, func() bool { return ran.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestOutlineRenderer_StrokesEdgesOnly(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	red := color.RGBA{R: 255, A: 255}
	render := OutlineRenderer(red, 4)
	render(geometry.Location{
		geometry.TopLeft:     {X: 20, Y: 20},
		geometry.TopRight:    {X: 80, Y: 20},
		geometry.BottomRight: {X: 80, Y: 80},
		geometry.BottomLeft:  {X: 20, Y: 80},
	}, dst)

	assert.Equal(t, uint8(255), dst.RGBAAt(50, 20).R, "top edge")
	assert.Equal(t, uint8(255), dst.RGBAAt(80, 50).R, "right edge")
	assert.Equal(t, uint8(0), dst.RGBAAt(50, 50).A, "interior stays transparent")
	assert.Equal(t, uint8(0), dst.RGBAAt(5, 5).A, "outside stays transparent")
}

func TestOutlineRenderer_ClipsOffscreenPoints(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	render := OutlineRenderer(color.White, 2)
	assert.NotPanics(t, func() {
		render(geometry.Location{
			geometry.TopLeft:     {X: -50, Y: -50},
			geometry.TopRight:    {X: 90, Y: -50},
			geometry.BottomRight: {X: 90, Y: 20},
			geometry.BottomLeft:  {X: -50, Y: 20},
		}, dst)
	})
	assert.Equal(t, uint8(255), dst.RGBAAt(20, 20).A, "visible bottom edge")
	assert.Equal(t, uint8(0), dst.RGBAAt(20, 10).A, "interior")
	assert.Equal(t, uint8(0), dst.RGBAAt(1, 30).A, "below the outline")
}

func TestOutlineRenderer_OffscreenSegmentKeepsItsSlope(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	render := OutlineRenderer(color.RGBA{R: 255, A: 255}, 4)
	// y = x + 30, entering the surface through its left edge
	render(geometry.Location{
		geometry.TopLeft:  {X: -30, Y: 0},
		geometry.TopRight: {X: 30, Y: 60},
	}, dst)

	for _, p := range []image.Point{{5, 35}, {1, 31}, {20, 50}} {
		assert.NotZero(t, dst.RGBAAt(p.X, p.Y).A, "on the line at %v", p)
	}
	for _, p := range []image.Point{{5, 10}, {0, 5}, {20, 20}, {40, 90}} {
		assert.Zero(t, dst.RGBAAt(p.X, p.Y).A, "off the line at %v", p)
	}
}
