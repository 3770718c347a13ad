package view

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats updates streaming durations and detection counts.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
	SetDetections(session, total int)
	SetScanStats(text string)
}

type sessionStats struct {
	sessionLbl   *LabelWidget
	totalLbl     *LabelWidget
	detectionLbl *LabelWidget
	scanLbl      *LabelWidget
}

// NewSessionStats creates the labels in a grid layout starting at (row, startCol).
// If parent is nil, labels are positioned relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), detectionLbl: Label(Width(22))}
	for i, lbl := range []*LabelWidget{s.sessionLbl, s.totalLbl, s.detectionLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.scanLbl = Label(Anchor("w"))
	if parent != nil {
		Grid(s.scanLbl, In(parent), Row(row+1), Column(startCol), Columnspan(3), Sticky("we"), Padx("0.2m"))
	} else {
		Grid(s.scanLbl, Row(row+1), Column(startCol), Columnspan(3), Sticky("we"), Padx("0.2m"))
	}
	s.sessionLbl.Configure(Txt("Session: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	s.detectionLbl.Configure(Txt("Scans: 0 / 0"))
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetSession updates the session duration display.
func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(d)))
}

// SetTotal updates the total duration display.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

// SetDetections updates the detection counters.
func (s *sessionStats) SetDetections(session, total int) {
	if s == nil || s.detectionLbl == nil {
		return
	}
	s.detectionLbl.Configure(Txt(fmt.Sprintf("Scans: %s / %s", humanize.Comma(int64(session)), humanize.Comma(int64(total)))))
}

// SetScanStats updates the scan rate line.
func (s *sessionStats) SetScanStats(text string) {
	if s == nil || s.scanLbl == nil {
		return
	}
	s.scanLbl.Configure(Txt(text))
}
