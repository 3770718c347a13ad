package presenter

import (
	"fmt"
	"time"

	"github.com/soocke/scansurface-go/domain/scan"
	"github.com/soocke/scansurface-go/ui/model"
)

// StreamingState reports whether the stream is live.
type StreamingState interface{ ShouldStream() bool }

// ScanCounters exposes the counters of the running scan loop.
type ScanCounters interface{ ScanStats() scan.Stats }

// SessionView displays formatted session and total durations, detection
// counts and the scan rate line.
type SessionView interface {
	SetSession(session, total time.Duration)
	SetDetections(session, total int)
	SetScanStats(text string)
}

// SessionPresenter formats session values from the model to the view.
// Counters is optional.
type SessionPresenter struct {
	sess     *model.SessionModel
	state    StreamingState
	view     SessionView
	Counters ScanCounters
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, state StreamingState, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, state: state, view: view}
}

// OnDetections forwards detection counts to the session model.
func (p *SessionPresenter) OnDetections(n int) {
	if p == nil || p.sess == nil {
		return
	}
	p.sess.OnDetections(n)
}

// Tick advances the session model and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.state == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.state.ShouldStream(), now)
	s, t := p.sess.Values()
	p.view.SetSession(s, t)
	ds, dt := p.sess.Detections()
	p.view.SetDetections(ds, dt)
	if p.Counters != nil {
		p.view.SetScanStats(FormatScanStats(p.Counters.ScanStats()))
	}
}

// FormatScanStats renders loop and capture counters on one line. An idle
// loop renders as "Scan: idle".
func FormatScanStats(s scan.Stats) string {
	if s.Iterations == 0 {
		return "Scan: idle"
	}
	return fmt.Sprintf("Scan: %d rounds, %d failed, decode %s, capture %s",
		s.Iterations, s.Failures,
		s.AvgDecode.Round(time.Millisecond), s.Capture.AvgCapture.Round(time.Millisecond))
}
