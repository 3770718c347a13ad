package presenter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soocke/scansurface-go/domain/camera"
	"github.com/soocke/scansurface-go/domain/stream"
)

// StatusView shows the stream state and device capabilities.
type StatusView interface {
	SetStatusLabel(string)
	SetCapabilities(string)
	SetTorchAvailable(bool)
}

// StatusPresenter follows InitEvents and reflects their outcome on the next
// Tick. Only the newest event matters; older ones were superseded.
type StatusPresenter struct {
	view   StatusView
	logger *slog.Logger

	mu      sync.Mutex
	pending *stream.InitEvent
	latest  string
}

func NewStatusPresenter(view StatusView, logger *slog.Logger) *StatusPresenter {
	return &StatusPresenter{view: view, logger: logger}
}

// OnInit queues ev. Safe to call from any goroutine.
func (p *StatusPresenter) OnInit(ev stream.InitEvent) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = &ev
	p.mu.Unlock()
}

// Tick updates the view once the pending event has settled.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	ev := p.pending
	p.mu.Unlock()
	if ev == nil {
		return
	}

	select {
	case <-ev.Done():
	default:
		p.setLabel(fmt.Sprintf("Status: starting %s camera (%s)", ev.Options.Selector, now.Sub(ev.StartedAt).Truncate(100*time.Millisecond)))
		return
	}

	p.mu.Lock()
	if p.pending == ev {
		p.pending = nil
	}
	p.mu.Unlock()

	caps, err := ev.Wait(context.Background())
	switch {
	case err != nil:
		if p.logger != nil {
			p.logger.Warn("status.init", "event", ev.ID.String(), "error", err)
		}
		p.setLabel("Status: camera unavailable")
		p.view.SetCapabilities(err.Error())
		p.view.SetTorchAvailable(false)
	case ev.Options.Selector == camera.SelectorOff:
		p.setLabel("Status: camera off")
		p.view.SetCapabilities("")
		p.view.SetTorchAvailable(false)
	case len(caps) == 0:
		p.setLabel("Status: paused")
		p.view.SetCapabilities("")
	default:
		p.setLabel(fmt.Sprintf("Status: streaming (%s)", ev.Options.Selector))
		p.view.SetCapabilities(FormatCapabilities(caps))
		p.view.SetTorchAvailable(caps["torch"] != "" && caps["torch"] != "unsupported")
	}
}

func (p *StatusPresenter) setLabel(s string) {
	if s == p.latest {
		return
	}
	p.latest = s
	p.view.SetStatusLabel(s)
}

// FormatCapabilities renders caps as sorted "key: value" lines.
func FormatCapabilities(caps camera.Capabilities) string {
	keys := make([]string, 0, len(caps))
	for k := range caps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(caps[k])
	}
	return b.String()
}
