package geometry

import "sort"

// Corner keys reported by detectors for a quadrilateral code region.
const (
	TopLeft     = "topLeftCorner"
	TopRight    = "topRightCorner"
	BottomRight = "bottomRightCorner"
	BottomLeft  = "bottomLeftCorner"
)

// CornerKeys lists the corner keys in outline (clockwise) order.
var CornerKeys = []string{TopLeft, TopRight, BottomRight, BottomLeft}

// Point is a coordinate in either resolution or display space.
type Point struct {
	X float64
	Y float64
}

// Location maps detector keys to points. A nil or empty Location is the
// "no location" value.
type Location map[string]Point

// NoLocation is the sentinel passed to locate handlers when nothing was found.
var NoLocation Location

// IsNone reports whether l carries no points.
func (l Location) IsNone() bool { return len(l) == 0 }

// Polygon returns the points for keys in the given order, skipping keys the
// location does not contain. A nil order sorts the keys alphabetically.
func (l Location) Polygon(order []string) []Point {
	if l.IsNone() {
		return nil
	}
	if order == nil {
		order = make([]string, 0, len(l))
		for k := range l {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	out := make([]Point, 0, len(order))
	for _, k := range order {
		if p, ok := l[k]; ok {
			out = append(out, p)
		}
	}
	return out
}

// DisplayGeometry pairs the on-screen box with the raw stream resolution.
type DisplayGeometry struct {
	DisplayWidth     int
	DisplayHeight    int
	ResolutionWidth  int
	ResolutionHeight int
}

// Valid reports whether every dimension is positive. MapLocation must only be
// called with valid geometry.
func (g DisplayGeometry) Valid() bool {
	return g.DisplayWidth > 0 && g.DisplayHeight > 0 && g.ResolutionWidth > 0 && g.ResolutionHeight > 0
}
