package decode

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/soocke/scansurface-go/domain/geometry"
)

type request struct {
	frame *image.RGBA
	reply chan response
}

type response struct {
	res Result
	err error
}

// QRWorker decodes QR codes on a dedicated goroutine. Requests are served in
// order; callers block until their own request completes.
type QRWorker struct {
	logger    *slog.Logger
	reader    gozxing.Reader
	hints     map[gozxing.DecodeHintType]interface{}
	reqCh     chan request
	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewQRWorker starts a QR decoding worker.
func NewQRWorker(logger *slog.Logger) *QRWorker {
	w := &QRWorker{
		logger: logger,
		reader: qrcode.NewQRCodeReader(),
		hints:  map[gozxing.DecodeHintType]interface{}{gozxing.DecodeHintType_TRY_HARDER: true},
		reqCh:  make(chan request),
		done:   make(chan struct{}),
		now:    time.Now,
	}
	go w.run()
	return w
}

// QRFactory returns a Factory producing QR workers that share logger.
func QRFactory(logger *slog.Logger) Factory {
	return func() (Decoder, error) { return NewQRWorker(logger), nil }
}

// Decode submits frame and waits for the result.
func (w *QRWorker) Decode(ctx context.Context, frame *image.RGBA) (Result, error) {
	if frame == nil {
		return Result{}, fmt.Errorf("decode: nil frame")
	}
	reply := make(chan response, 1)
	select {
	case w.reqCh <- request{frame: frame, reply: reply}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-w.done:
		return Result{}, ErrWorkerClosed
	}
	select {
	case r := <-reply:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-w.done:
		return Result{}, ErrWorkerClosed
	}
}

// Close stops the worker goroutine. Pending and later Decode calls fail with
// ErrWorkerClosed.
func (w *QRWorker) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}

func (w *QRWorker) run() {
	for {
		select {
		case req := <-w.reqCh:
			req.reply <- w.safeDecode(req.frame)
		case <-w.done:
			return
		}
	}
}

func (w *QRWorker) safeDecode(frame *image.RGBA) (resp response) {
	defer func() {
		if r := recover(); r != nil {
			if w.logger != nil {
				w.logger.Error("decode panic", "error", r, "stack", string(debug.Stack()))
			}
			resp = response{err: fmt.Errorf("decode: panic: %v", r)}
		}
	}()
	return w.decode(frame)
}

func (w *QRWorker) decode(frame *image.RGBA) response {
	bmp, err := gozxing.NewBinaryBitmapFromImage(frame)
	if err != nil {
		return response{err: fmt.Errorf("decode: binarize: %w", err)}
	}
	result, err := w.reader.Decode(bmp, w.hints)
	if err != nil {
		// Not finding a code is the common case, not a failure.
		return response{}
	}
	loc := locationFromPoints(result.GetResultPoints())
	return response{res: Result{
		Location: loc,
		Detection: &Detection{
			Payload:   result.GetText(),
			Format:    result.GetBarcodeFormat().String(),
			Location:  loc,
			DecodedAt: w.now(),
		},
	}}
}

// locationFromPoints converts QR finder pattern centres (bottom-left,
// top-left, top-right) into corner keys. The bottom-right corner is completed
// as a parallelogram.
func locationFromPoints(points []gozxing.ResultPoint) geometry.Location {
	if len(points) < 3 {
		return geometry.NoLocation
	}
	bl := geometry.Point{X: points[0].GetX(), Y: points[0].GetY()}
	tl := geometry.Point{X: points[1].GetX(), Y: points[1].GetY()}
	tr := geometry.Point{X: points[2].GetX(), Y: points[2].GetY()}
	br := geometry.Point{X: tr.X + bl.X - tl.X, Y: tr.Y + bl.Y - tl.Y}
	return geometry.Location{
		geometry.TopLeft:     tl,
		geometry.TopRight:    tr,
		geometry.BottomRight: br,
		geometry.BottomLeft:  bl,
	}
}
