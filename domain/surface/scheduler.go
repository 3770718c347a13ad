package surface

import (
	"sync"
	"time"
)

// Scheduler runs work on the next display refresh tick.
type Scheduler interface {
	Schedule(work func())
}

// QueueScheduler collects work until Flush is called. The UI drives Flush
// from its refresh tick; tests call it directly.
type QueueScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// NewQueueScheduler returns an empty queue scheduler.
func NewQueueScheduler() *QueueScheduler { return &QueueScheduler{} }

func (q *QueueScheduler) Schedule(work func()) {
	if work == nil {
		return
	}
	q.mu.Lock()
	q.queue = append(q.queue, work)
	q.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (q *QueueScheduler) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Flush runs the work queued so far. Work scheduled while flushing waits for
// the next Flush.
func (q *QueueScheduler) Flush() {
	q.mu.Lock()
	work := q.queue
	q.queue = nil
	q.mu.Unlock()
	for _, fn := range work {
		fn()
	}
}

// DefaultRefreshInterval approximates a 60Hz display.
const DefaultRefreshInterval = time.Second / 60

// TickerScheduler flushes a queue from its own goroutine at a fixed refresh
// interval. Used when no UI event loop is available.
type TickerScheduler struct {
	QueueScheduler
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewTickerScheduler starts a ticker-driven scheduler. A non-positive
// interval uses DefaultRefreshInterval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	s := &TickerScheduler{interval: interval, done: make(chan struct{})}
	go s.loop()
	return s
}

func (s *TickerScheduler) loop() {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Flush()
		case <-s.done:
			return
		}
	}
}

// Stop ends the tick goroutine. Queued work is dropped.
func (s *TickerScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}
