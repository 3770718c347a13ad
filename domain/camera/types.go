package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// Selector chooses which device the acquisition routine opens.
type Selector string

const (
	SelectorAuto  Selector = "auto"
	SelectorRear  Selector = "rear"
	SelectorFront Selector = "front"
	SelectorOff   Selector = "off"
)

// Selectors lists every accepted selector value in display order.
var Selectors = []Selector{SelectorAuto, SelectorRear, SelectorFront, SelectorOff}

var (
	ErrUnknownSelector = errors.New("camera: unknown selector")
	ErrHandleStopped   = errors.New("camera: handle stopped")
)

// ParseSelector normalizes s into a Selector. Empty input means auto.
func ParseSelector(s string) (Selector, error) {
	switch v := Selector(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return SelectorAuto, nil
	case SelectorAuto, SelectorRear, SelectorFront, SelectorOff:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSelector, s)
	}
}

// Options are the device parameters a stream is (re)initialized with.
type Options struct {
	Selector Selector
	Torch    bool
}

// Capabilities maps a supported feature name to a short description.
type Capabilities map[string]string

// Clone returns an independent copy. A nil receiver yields an empty map.
func (c Capabilities) Clone() Capabilities {
	out := make(Capabilities, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Handle is an open camera stream. Stop is safe to call more than once;
// CaptureFrame after Stop returns ErrHandleStopped.
type Handle interface {
	ID() string
	Capabilities() Capabilities
	Resolution() image.Point
	CaptureFrame(ctx context.Context) (*image.RGBA, error)
	Stop() error
}

// Acquirer opens a handle for opts. Implementations must return a handle that
// can still be stopped after ctx is cancelled.
type Acquirer func(ctx context.Context, opts Options) (Handle, error)
