package preprocess

import (
	"errors"
	"fmt"
	"gocv.io/x/gocv"
)

// ErrInvalidFrame is returned when a frame is empty or not an 8 bit, 3 channel
// BGR image
var ErrInvalidFrame = errors.New("invalid frame")

// Normalizer converts colour frames into the binary image text detection is
// run on.  The zero value is ready to use and safe for concurrent use as
// it holds no state
type Normalizer struct{}

// Normalize converts the BGR src frame to grayscale and then binarizes it with
// a threshold chosen by Otsu's method.  Polarity is inverted so dark text on a
// light background becomes foreground (255).  The result is written to dst
// which is single channel and the same size as src.  The Otsu threshold level
// chosen is returned
func (n Normalizer) Normalize(src gocv.Mat, dst *gocv.Mat) (float32, error) {

	if err := CheckFrame(src); err != nil {
		return 0, err
	}

	gray := gocv.NewMat()
	defer gray.Close()

	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	// threshold value of 0 is ignored when Otsu is set
	level := gocv.Threshold(gray, dst, 0, 255,
		gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)

	return level, nil
}

// CheckFrame validates that the Mat is a non empty BGR frame
func CheckFrame(src gocv.Mat) error {

	if src.Empty() || src.Rows() == 0 || src.Cols() == 0 {
		return fmt.Errorf("%w: frame is empty", ErrInvalidFrame)
	}

	if src.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("%w: expected 8 bit 3 channel frame, got %d channels of type %d",
			ErrInvalidFrame, src.Channels(), src.Type())
	}

	return nil
}
