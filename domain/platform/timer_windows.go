//go:build windows

package platform

import "golang.org/x/sys/windows"

// The default Windows timer tick is ~15.6ms, too coarse for a 40ms scan
// cadence. timeBeginPeriod(1) raises it process wide.
var (
	winmm               = windows.NewLazySystemDLL("winmm.dll")
	procTimeBeginPeriod = winmm.NewProc("timeBeginPeriod")
	procTimeEndPeriod   = winmm.NewProc("timeEndPeriod")
)

func beginHighRes() {
	if procTimeBeginPeriod.Find() != nil {
		return
	}
	_, _, _ = procTimeBeginPeriod.Call(1)
}

func endHighRes() {
	if procTimeEndPeriod.Find() != nil {
		return
	}
	_, _, _ = procTimeEndPeriod.Call(1)
}
