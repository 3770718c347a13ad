package surface

import (
	"image"
	"image/draw"
	"sync"
)

// Surface is an off-screen RGBA layer. It starts empty (0x0).
type Surface struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// Size returns the current surface dimensions.
func (s *Surface) Size() image.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.img == nil {
		return image.Point{}
	}
	return s.img.Rect.Size()
}

// Snapshot returns a copy of the surface, or nil when it has no area.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.img == nil || s.img.Rect.Empty() {
		return nil
	}
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// Blank reports whether every pixel is fully transparent.
func (s *Surface) Blank() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.img == nil {
		return true
	}
	for _, b := range s.img.Pix {
		if b != 0 {
			return false
		}
	}
	return true
}

// resizeLocked sets the surface to w x h. Like a canvas, resizing drops the
// previous contents even when the size does not change.
func (s *Surface) resizeLocked(w, h int) {
	if s.img != nil && s.img.Rect.Dx() == w && s.img.Rect.Dy() == h {
		clear(s.img.Pix)
		return
	}
	old := s.img
	s.img = acquireBuffer(image.Rect(0, 0, w, h))
	recycleBuffer(old)
}

// erase makes every pixel transparent, keeping the size.
func (s *Surface) erase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img != nil {
		clear(s.img.Pix)
	}
}

// paint resizes to src and copies its pixels. Readers never observe the
// surface between the two.
func (s *Surface) paint(src *image.RGBA) {
	b := src.Bounds()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizeLocked(b.Dx(), b.Dy())
	draw.Draw(s.img, s.img.Rect, src, b.Min, draw.Src)
}

// redraw resizes the surface to w x h and runs fn on the fresh image while
// still holding the lock.
func (s *Surface) redraw(w, h int, fn func(dst draw.Image)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizeLocked(w, h)
	fn(s.img)
}
