package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// Each Tick first flushes deferred surface writes, then lets the presenters
// read the result, then invokes the scheduler callback for the next tick.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Flush    func()
	Status   *StatusPresenter
	Session  *SessionPresenter
	Scan     *ScanPresenter
	Schedule func()
}

func NewLoop(flush func(), status *StatusPresenter, sess *SessionPresenter, scan *ScanPresenter, schedule func()) *Loop {
	return &Loop{Flush: flush, Status: status, Session: sess, Scan: scan, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Flush != nil {
		l.Flush()
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Scan != nil {
		l.Scan.ProcessFrame()
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
