package platform

import "sync"

var (
	timerMu    sync.Mutex
	timerHolds int
)

// HoldHighResTimer asks the OS for 1ms timer granularity until the returned
// release func is called. Holds are reference counted; release is idempotent.
// On platforms where timers are already fine grained this only counts.
func HoldHighResTimer() (release func()) {
	timerMu.Lock()
	timerHolds++
	if timerHolds == 1 {
		beginHighRes()
	}
	timerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			timerMu.Lock()
			timerHolds--
			if timerHolds == 0 {
				endHighRes()
			}
			timerMu.Unlock()
		})
	}
}

// HighResHolds reports the number of outstanding holds.
func HighResHolds() int {
	timerMu.Lock()
	defer timerMu.Unlock()
	return timerHolds
}
