package surface

import (
	"image"
	"sync"
)

// Surfaces are resized whenever the frame or display size changes. Backing
// buffers are recycled through a pool so a resize does not leave a fresh
// display-sized slice behind every time.

var bufferPool sync.Pool // stores *image.RGBA

// acquireBuffer returns a zeroed RGBA image sized to rect. Pix length is
// exactly area*4 and Stride is width*4.
func acquireBuffer(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := bufferPool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	}
	img.Stride = w * 4
	img.Rect = rect
	img.Pix = img.Pix[:needed]
	clear(img.Pix)
	return img
}

// recycleBuffer returns img to the pool. The caller must not touch img
// afterwards.
func recycleBuffer(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	bufferPool.Put(img)
}
