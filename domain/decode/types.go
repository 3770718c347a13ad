package decode

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/soocke/scansurface-go/domain/geometry"
)

var ErrWorkerClosed = errors.New("decode: worker closed")

// Detection is a decoded payload with the region it was found in
// (resolution space).
type Detection struct {
	Payload   string
	Format    string
	Location  geometry.Location
	DecodedAt time.Time
}

// Result is the outcome of one decode request. Location may be the
// no-location value; Detection is nil when no payload was decoded.
type Result struct {
	Location  geometry.Location
	Detection *Detection
}

// Decoder analyses frames one request at a time.
type Decoder interface {
	Decode(ctx context.Context, frame *image.RGBA) (Result, error)
	Close() error
}

// Factory constructs a Decoder.
type Factory func() (Decoder, error)
