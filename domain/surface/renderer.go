package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/soocke/scansurface-go/domain/geometry"
)

// OutlineRenderer strokes the closed corner polygon of a location with the
// given colour and line width in pixels.
func OutlineRenderer(c color.Color, width float64) RenderFunc {
	if width <= 0 {
		width = 2
	}
	src := image.NewUniform(c)
	return func(mapped geometry.Location, dst draw.Image) {
		pts := mapped.Polygon(geometry.CornerKeys)
		if len(pts) < 2 {
			pts = mapped.Polygon(nil)
		}
		if len(pts) < 2 {
			return
		}
		b := dst.Bounds()
		if b.Empty() {
			return
		}
		z := vector.NewRasterizer(b.Dx(), b.Dy())
		strokeClosed(z, pts, width/2, float64(b.Dx()), float64(b.Dy()))
		z.Draw(dst, b, src, image.Point{})
	}
}

// strokeClosed adds one quad per polygon edge, offset by half the line width
// on both sides of the edge.
func strokeClosed(z *vector.Rasterizer, pts []geometry.Point, half, w, h float64) {
	n := len(pts)
	if n == 2 {
		n = 1 // a single segment, not a degenerate loop
	}
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// extend along the edge so corners join without notches
		ex, ey := dx/l*half, dy/l*half
		nx, ny := -dy/l*half, dx/l*half
		ax, ay := a.X-ex, a.Y-ey
		bx, by := b.X+ex, b.Y+ey
		quad := []geometry.Point{
			{X: ax + nx, Y: ay + ny},
			{X: bx + nx, Y: by + ny},
			{X: bx - nx, Y: by - ny},
			{X: ax - nx, Y: ay - ny},
		}
		poly := clipRect(quad, w, h)
		if len(poly) < 3 {
			continue
		}
		z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
		for _, p := range poly[1:] {
			z.LineTo(float32(p.X), float32(p.Y))
		}
		z.ClosePath()
	}
}

// clipRect clips a convex polygon to [0,w]x[0,h] (Sutherland-Hodgman).
func clipRect(poly []geometry.Point, w, h float64) []geometry.Point {
	edges := []struct {
		inside func(p geometry.Point) bool
		cross  func(a, b geometry.Point) geometry.Point
	}{
		{func(p geometry.Point) bool { return p.X >= 0 }, func(a, b geometry.Point) geometry.Point { return atX(a, b, 0) }},
		{func(p geometry.Point) bool { return p.X <= w }, func(a, b geometry.Point) geometry.Point { return atX(a, b, w) }},
		{func(p geometry.Point) bool { return p.Y >= 0 }, func(a, b geometry.Point) geometry.Point { return atY(a, b, 0) }},
		{func(p geometry.Point) bool { return p.Y <= h }, func(a, b geometry.Point) geometry.Point { return atY(a, b, h) }},
	}
	for _, e := range edges {
		if len(poly) == 0 {
			return nil
		}
		out := make([]geometry.Point, 0, len(poly)+2)
		prev := poly[len(poly)-1]
		for _, cur := range poly {
			switch {
			case e.inside(cur):
				if !e.inside(prev) {
					out = append(out, e.cross(prev, cur))
				}
				out = append(out, cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
		poly = out
	}
	return poly
}

func atX(a, b geometry.Point, x float64) geometry.Point {
	t := (x - a.X) / (b.X - a.X)
	return geometry.Point{X: x, Y: a.Y + t*(b.Y-a.Y)}
}

func atY(a, b geometry.Point, y float64) geometry.Point {
	t := (y - a.Y) / (b.Y - a.Y)
	return geometry.Point{X: a.X + t*(b.X-a.X), Y: y}
}
