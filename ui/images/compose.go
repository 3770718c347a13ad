package images

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/soocke/scansurface-go/domain/geometry"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	_ = enc.Encode(&buf, img)
	return buf.Bytes()
}

// CoverRect returns where src lands inside a w x h box when scaled to cover
// it, centred. Parts of the rectangle may lie outside the box.
func CoverRect(src image.Rectangle, w, h int) image.Rectangle {
	g := geometry.DisplayGeometry{DisplayWidth: w, DisplayHeight: h, ResolutionWidth: src.Dx(), ResolutionHeight: src.Dy()}
	if !g.Valid() {
		return image.Rectangle{}
	}
	scale, xOff, yOff := geometry.Cover(g)
	x0 := int(math.Floor(xOff))
	y0 := int(math.Floor(yOff))
	return image.Rect(x0, y0, x0+int(math.Ceil(float64(src.Dx())*scale)), y0+int(math.Ceil(float64(src.Dy())*scale)))
}

// Compose renders the video box: base scaled to cover w x h (the same fit
// the tracking overlay is mapped with), then overlay drawn on top at the
// origin. Either input may be nil.
func Compose(base, overlay image.Image, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if base != nil {
		if r := CoverRect(base.Bounds(), w, h); !r.Empty() {
			xdraw.ApproxBiLinear.Scale(dst, r, base, base.Bounds(), draw.Src, nil)
		}
	}
	if overlay != nil {
		draw.Draw(dst, dst.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	}
	return dst
}
