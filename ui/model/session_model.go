package model

import (
	"time"
)

// SessionModel tracks how long the scanner has been streaming in the current
// session, the accumulated streaming time and the detections seen per session.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use. Not safe for concurrent use: call from the
// UI tick only.
type SessionModel struct {
	active              bool
	streamStart         time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration
	sessionDetections   int
	totalDetections     int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current streaming state and timestamp.
func (m *SessionModel) OnTick(streaming bool, now time.Time) {
	if m == nil {
		return
	}
	if streaming {
		if !m.active { // off -> on
			m.active = true
			m.streamStart = now
			m.lastSessionDuration = 0
			m.sessionDetections = 0
		}
		m.lastSessionDuration = now.Sub(m.streamStart)
	} else if m.active { // on -> off
		m.lastSessionDuration = now.Sub(m.streamStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// OnDetections adds n detections to the current session. Detections reported
// while no session is active only count towards the total.
func (m *SessionModel) OnDetections(n int) {
	if m == nil || n <= 0 {
		return
	}
	if m.active {
		m.sessionDetections += n
	}
	m.totalDetections += n
}

// Values returns the current session duration and the total accumulated duration.
// The total includes the ongoing session when active.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastSessionDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// Detections returns the detection counts of the current (or last) session and overall.
func (m *SessionModel) Detections() (session, total int) {
	if m == nil {
		return 0, 0
	}
	return m.sessionDetections, m.totalDetections
}

// Active reports whether a session is running.
func (m *SessionModel) Active() bool { return m != nil && m.active }
