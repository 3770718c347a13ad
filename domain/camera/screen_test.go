package camera

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeScreen(w, h int) boundsFunc {
	return func() (image.Rectangle, error) { return image.Rect(0, 0, w, h), nil }
}

type grabRecorder struct {
	rects []image.Rectangle
	err   error
}

func (g *grabRecorder) grab(r image.Rectangle) (*image.RGBA, error) {
	g.rects = append(g.rects, r)
	if g.err != nil {
		return nil, g.err
	}
	// Mimic a sub-image that keeps its screen offset.
	full := image.NewRGBA(image.Rect(0, 0, r.Max.X, r.Max.Y))
	return full.SubImage(r).(*image.RGBA), nil
}

func TestScreenAcquirer_SelectorRegions(t *testing.T) {
	g := &grabRecorder{}
	acq := newScreenAcquirer(nil, fakeScreen(1920, 1080), g.grab)

	h, err := acq(context.Background(), Options{Selector: SelectorAuto})
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1920, 1080), h.Resolution())
	assert.Equal(t, "environment", h.Capabilities()["facingMode"])

	front, err := acq(context.Background(), Options{Selector: SelectorFront})
	require.NoError(t, err)
	assert.Equal(t, image.Pt(720, 540), front.Resolution())
	assert.Equal(t, "user", front.Capabilities()["facingMode"])
	assert.NotEqual(t, h.ID(), front.ID())

	frame, err := front.CaptureFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 720, 540), frame.Bounds())
	require.Len(t, g.rects, 1)
	assert.Equal(t, image.Rect(600, 270, 1320, 810), g.rects[0])
}

func TestScreenAcquirer_RejectsUnknownSelector(t *testing.T) {
	acq := newScreenAcquirer(nil, fakeScreen(100, 100), (&grabRecorder{}).grab)
	_, err := acq(context.Background(), Options{Selector: SelectorOff})
	assert.ErrorIs(t, err, ErrUnknownSelector)
}

func TestScreenAcquirer_CancelledContext(t *testing.T) {
	acq := newScreenAcquirer(nil, fakeScreen(100, 100), (&grabRecorder{}).grab)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := acq(ctx, Options{Selector: SelectorAuto})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScreenHandle_StopIsIdempotent(t *testing.T) {
	acq := newScreenAcquirer(nil, fakeScreen(64, 48), (&grabRecorder{}).grab)
	h, err := acq(context.Background(), Options{Selector: SelectorRear, Torch: true})
	require.NoError(t, err)
	assert.Equal(t, "unsupported", h.Capabilities()["torch"])
	require.NoError(t, h.Stop())
	require.NoError(t, h.Stop())
	_, err = h.CaptureFrame(context.Background())
	assert.ErrorIs(t, err, ErrHandleStopped)
}

func TestScreenHandle_StatsCountFailures(t *testing.T) {
	g := &grabRecorder{err: errors.New("display gone")}
	acq := newScreenAcquirer(nil, fakeScreen(64, 48), g.grab)
	h, err := acq(context.Background(), Options{Selector: SelectorAuto})
	require.NoError(t, err)
	_, err = h.CaptureFrame(context.Background())
	require.Error(t, err)
	stats := h.(StatsReporter).Stats()
	assert.Equal(t, uint64(1), stats.Failures)
	assert.Equal(t, uint64(0), stats.Captures)
}

func TestParseSelector(t *testing.T) {
	cases := map[string]Selector{"": SelectorAuto, "AUTO": SelectorAuto, " front ": SelectorFront, "off": SelectorOff, "rear": SelectorRear}
	for in, want := range cases {
		got, err := ParseSelector(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseSelector("side")
	assert.ErrorIs(t, err, ErrUnknownSelector)
}

func TestCapabilities_CloneIsIndependent(t *testing.T) {
	c := Capabilities{"torch": "unsupported"}
	d := c.Clone()
	d["zoom"] = "1x"
	assert.Len(t, c, 1)
	assert.NotNil(t, Capabilities(nil).Clone())
}
