package model

import (
	"sync"

	"github.com/soocke/scansurface-go/domain/decode"
)

// DetectionLog keeps the most recent detections in a bounded ring, newest
// last. A repeated payload refreshes its entry instead of adding a new one.
type DetectionLog struct {
	mu    sync.Mutex
	limit int
	items []decode.Detection
	total uint64
}

// NewDetectionLog returns a log holding at most limit entries (minimum 1).
func NewDetectionLog(limit int) *DetectionLog {
	if limit < 1 {
		limit = 1
	}
	return &DetectionLog{limit: limit}
}

// Add records d and reports whether its payload differs from the newest entry.
func (l *DetectionLog) Add(d decode.Detection) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total++
	if n := len(l.items); n > 0 && l.items[n-1].Payload == d.Payload {
		l.items[n-1] = d
		return false
	}
	for i := range l.items {
		if l.items[i].Payload == d.Payload {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	if len(l.items) == l.limit {
		copy(l.items, l.items[1:])
		l.items = l.items[:len(l.items)-1]
	}
	l.items = append(l.items, d)
	return true
}

// Items returns a copy of the entries, oldest first.
func (l *DetectionLog) Items() []decode.Detection {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]decode.Detection(nil), l.items...)
}

// Latest returns the newest entry.
func (l *DetectionLog) Latest() (decode.Detection, bool) {
	if l == nil {
		return decode.Detection{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return decode.Detection{}, false
	}
	return l.items[len(l.items)-1], true
}

// Total counts every Add call, duplicates included.
func (l *DetectionLog) Total() uint64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Reset drops all entries and the counter.
func (l *DetectionLog) Reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.items = nil
	l.total = 0
	l.mu.Unlock()
}
