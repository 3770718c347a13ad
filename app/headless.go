package app

import (
	"context"
	"image"
	"log/slog"
	"time"
)

// RunHeadless drives the presenters without a window until ctx ends. Status
// changes and detections are logged instead of displayed.
func RunHeadless(ctx context.Context, c *AppContainer, interval time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	c.StreamPresenter.Apply()
	defer c.Close()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			c.Loop.Tick()
		}
	}
}

// logUI satisfies UI by logging what a window would show.
type logUI struct {
	logger    *slog.Logger
	status    string
	detection string
	scan      string
}

func newLogUI(logger *slog.Logger) *logUI { return &logUI{logger: logger} }

func (u *logUI) log(msg string, args ...any) {
	if u.logger != nil {
		u.logger.Info(msg, args...)
	}
}

func (u *logUI) SetStatusLabel(text string) {
	if text != u.status {
		u.status = text
		u.log("ui.status", "text", text)
	}
}

func (u *logUI) SetCapabilities(text string) {
	if u.logger != nil && text != "" {
		u.logger.Debug("ui.capabilities", "text", text)
	}
}

func (u *logUI) SetDetection(text string) {
	if text != u.detection {
		u.detection = text
		u.log("ui.detection", "text", text)
	}
}

func (u *logUI) SetTorchAvailable(bool)                  {}
func (u *logUI) SetStreaming(bool)                       {}
func (u *logUI) UpdatePreview(image.Image)               {}
func (u *logUI) SetHistory([]string)                     {}
func (u *logUI) SetSession(session, total time.Duration) {}
func (u *logUI) SetDetections(session, total int)        {}

func (u *logUI) SetScanStats(text string) {
	if u.logger != nil && text != u.scan {
		u.scan = text
		u.logger.Debug("ui.scan", "text", text)
	}
}
