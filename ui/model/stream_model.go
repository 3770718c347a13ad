package model

import (
	"sync"
	"sync/atomic"

	"github.com/soocke/scansurface-go/domain/camera"
)

// StreamModel mirrors the user's stream controls: enabled, torch, device and
// tracking. The zero value is disabled, camera off, and usable.
// Concurrency-safe because Tk callbacks and presenter ticks may race.
type StreamModel struct {
	enabled  atomic.Bool
	torch    atomic.Bool
	tracking atomic.Bool

	mu       sync.RWMutex
	selector camera.Selector
}

// Enabled reports whether streaming is switched on.
func (m *StreamModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag and reports whether it changed.
func (m *StreamModel) SetEnabled(b bool) bool {
	if m == nil {
		return false
	}
	return m.enabled.Swap(b) != b
}

// Torch reports whether the torch was requested.
func (m *StreamModel) Torch() bool {
	if m == nil {
		return false
	}
	return m.torch.Load()
}

// SetTorch stores the torch flag and reports whether it changed.
func (m *StreamModel) SetTorch(b bool) bool {
	if m == nil {
		return false
	}
	return m.torch.Swap(b) != b
}

// Tracking reports whether the overlay is on.
func (m *StreamModel) Tracking() bool {
	if m == nil {
		return false
	}
	return m.tracking.Load()
}

// SetTracking stores the overlay flag and reports whether it changed.
func (m *StreamModel) SetTracking(b bool) bool {
	if m == nil {
		return false
	}
	return m.tracking.Swap(b) != b
}

// Selector returns the chosen device, SelectorOff when unset.
func (m *StreamModel) Selector() camera.Selector {
	if m == nil {
		return camera.SelectorOff
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.selector == "" {
		return camera.SelectorOff
	}
	return m.selector
}

// SetSelector stores the device and reports whether it changed.
func (m *StreamModel) SetSelector(s camera.Selector) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selector == s {
		return false
	}
	m.selector = s
	return true
}

// CameraOptions returns the options the stream should be configured with.
func (m *StreamModel) CameraOptions() camera.Options {
	return camera.Options{Selector: m.Selector(), Torch: m.Torch()}
}
