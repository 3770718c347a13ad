package camera

import "time"

// Stats summarises capture behaviour of a handle for instrumentation.
type Stats struct {
	Captures    uint64
	Failures    uint64
	AvgCapture  time.Duration
	LastCapture time.Time
}

// StatsReporter is implemented by handles that track capture counters.
type StatsReporter interface {
	Stats() Stats
}
