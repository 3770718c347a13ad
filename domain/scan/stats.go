package scan

import (
	"context"
	"time"

	"github.com/soocke/scansurface-go/domain/camera"
)

// Stats summarises loop behaviour for instrumentation. Capture is filled in
// when the frame source reports its own counters.
type Stats struct {
	Iterations   uint64
	Detections   uint64
	Failures     uint64
	AvgDecode    time.Duration
	LastDetected time.Time
	MinDelay     time.Duration
	Capture      camera.Stats
}

// clock abstracts time so pacing can be tested without sleeping.
type clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
