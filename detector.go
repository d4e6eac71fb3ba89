package liveocr

import (
	"context"
	"github.com/swdee/go-liveocr/postprocess"
	"gocv.io/x/gocv"
)

// Detector finds text in a binary image.  It returns candidate tokens in any
// order with boxes in the image's pixel coordinates.  Text may be empty and
// a score that could not be read is reported as
// postprocess.UnscoredConfidence.  An empty result is not an error
type Detector interface {
	Detect(ctx context.Context, img gocv.Mat) ([]postprocess.Token, error)
}

// DetectorFunc adapts an ordinary function to the Detector interface
type DetectorFunc func(ctx context.Context, img gocv.Mat) ([]postprocess.Token, error)

// Detect calls f(ctx, img)
func (f DetectorFunc) Detect(ctx context.Context, img gocv.Mat) ([]postprocess.Token, error) {
	return f(ctx, img)
}
