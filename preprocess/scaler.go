package preprocess

import (
	"gocv.io/x/gocv"
	"image"
	"math"
)

// Scaler enlarges small binary images before text detection.  Detectors such
// as Tesseract read glyphs under roughly 20 pixels tall poorly, so a frame
// from a low resolution camera is scaled up until its height reaches
// minHeight.  Boxes detected on the scaled image are mapped back to source
// coordinates with MapRect
type Scaler struct {
	// minHeight is the smallest image height passed to the detector, a
	// value of zero or less disables scaling
	minHeight int
	// maxFactor caps the scale factor applied
	maxFactor float64
}

// NewScaler returns a Scaler that enlarges images shorter than minHeight by at
// most maxFactor
func NewScaler(minHeight int, maxFactor float64) Scaler {

	if maxFactor < 1 {
		maxFactor = 1
	}

	return Scaler{
		minHeight: minHeight,
		maxFactor: maxFactor,
	}
}

// Factor returns the scale factor that would be applied to an image of the
// given height
func (s Scaler) Factor(height int) float64 {

	if s.minHeight <= 0 || height <= 0 || height >= s.minHeight {
		return 1
	}

	factor := float64(s.minHeight) / float64(height)

	return math.Min(factor, s.maxFactor)
}

// Scale resizes src into dst when it is smaller than the minimum height and
// returns the factor used.  When no scaling is needed the returned factor is
// 1 and dst is left untouched, the caller should keep using src
func (s Scaler) Scale(src gocv.Mat, dst *gocv.Mat) float64 {

	factor := s.Factor(src.Rows())

	if factor == 1 {
		return 1
	}

	size := image.Pt(
		int(math.Round(float64(src.Cols())*factor)),
		int(math.Round(float64(src.Rows())*factor)),
	)

	// nearest neighbour keeps the image binary
	gocv.Resize(src, dst, size, 0, 0, gocv.InterpolationNearestNeighbor)

	return factor
}

// MapRect converts a rectangle on an image scaled by factor back to the
// coordinates of the source image
func MapRect(r image.Rectangle, factor float64) image.Rectangle {

	if factor == 1 || factor <= 0 {
		return r
	}

	return image.Rect(
		int(math.Floor(float64(r.Min.X)/factor)),
		int(math.Floor(float64(r.Min.Y)/factor)),
		int(math.Ceil(float64(r.Max.X)/factor)),
		int(math.Ceil(float64(r.Max.Y)/factor)),
	)
}
