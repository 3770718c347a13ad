package view

import (
	"image"

	"github.com/soocke/scansurface-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// VideoPreview is the fixed-size video box. Images handed to Update are
// expected to be composed at Size() already.
type VideoPreview interface {
	Update(img image.Image)
	Size() image.Point
	Reset()
}

type videoPreview struct {
	label     *LabelWidget
	w, h      int
	prevPhoto *Img // last Tk photo image instance, deleted on replacement
}

// NewVideoPreview creates the preview label at row spanning columns 0-3.
func NewVideoPreview(row, w, h int) VideoPreview {
	if w < 50 {
		w = 50
	}
	if h < 50 {
		h = 50
	}
	v := &videoPreview{w: w, h: h}
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(v.placeholder())))
	v.label = Label(Image(v.prevPhoto), Borderwidth(1), Relief("sunken"))
	Grid(v.label, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return v
}

func (v *videoPreview) placeholder() *image.RGBA {
	return images.Compose(nil, nil, v.w, v.h)
}

func (v *videoPreview) Size() image.Point { return image.Pt(v.w, v.h) }

func (v *videoPreview) Update(img image.Image) {
	if v.label == nil || img == nil {
		return
	}
	v.replace(images.EncodePNG(img))
}

func (v *videoPreview) Reset() {
	if v.label == nil {
		return
	}
	v.replace(images.EncodePNG(v.placeholder()))
}

// replace swaps the photo to avoid retaining obsolete pixel buffers.
func (v *videoPreview) replace(png []byte) {
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(png))
	v.label.Configure(Image(v.prevPhoto))
}
