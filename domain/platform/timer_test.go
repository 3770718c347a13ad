package platform

import "testing"

func TestHoldHighResTimer_ReferenceCounts(t *testing.T) {
	base := HighResHolds()
	r1 := HoldHighResTimer()
	r2 := HoldHighResTimer()
	if got := HighResHolds(); got != base+2 {
		t.Fatalf("expected %d holds, got %d", base+2, got)
	}
	r1()
	r1() // idempotent
	if got := HighResHolds(); got != base+1 {
		t.Fatalf("expected %d holds after one release, got %d", base+1, got)
	}
	r2()
	if got := HighResHolds(); got != base {
		t.Fatalf("expected %d holds after all releases, got %d", base, got)
	}
}
