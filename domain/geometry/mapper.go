package geometry

import "math"

// Cover returns the scale that makes the full frame cover the display box and
// the per-axis offsets of the scaled frame inside it. An offset is negative on
// the axis that gets cropped.
func Cover(g DisplayGeometry) (scale, xOffset, yOffset float64) {
	dw, dh := float64(g.DisplayWidth), float64(g.DisplayHeight)
	rw, rh := float64(g.ResolutionWidth), float64(g.ResolutionHeight)
	scale = math.Max(dw/rw, dh/rh)
	uncutWidth := rw * scale
	uncutHeight := rh * scale
	xOffset = (dw - uncutWidth) / 2
	yOffset = (dh - uncutHeight) / 2
	return scale, xOffset, yOffset
}

// MapLocation converts a location in resolution space into display space for
// a video shown with cover fitting. Results are floored to whole pixels. The
// no-location value is returned unchanged.
func MapLocation(loc Location, g DisplayGeometry) Location {
	if loc.IsNone() {
		return NoLocation
	}
	scale, xOffset, yOffset := Cover(g)
	out := make(Location, len(loc))
	for k, p := range loc {
		out[k] = Point{
			X: math.Floor(p.X*scale + xOffset),
			Y: math.Floor(p.Y*scale + yOffset),
		}
	}
	return out
}
