package liveocr

import (
	"bytes"
	"context"
	"fmt"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// DecodeFrame decodes an encoded image, such as an uploaded file or a
// captured snapshot, into a BGR frame.  OpenCV decoding is tried first, if it
// can not read the data the Go image decoders are used.  Undecodable data
// returns ErrInvalidFrame.  The caller must Close the returned Mat
func DecodeFrame(data []byte) (gocv.Mat, error) {

	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: no image data", ErrInvalidFrame)
	}

	frame, err := gocv.IMDecode(data, gocv.IMReadColor)

	if err == nil && !frame.Empty() {
		return frame, nil
	}

	if err == nil {
		frame.Close()
	}

	img, _, err := image.Decode(bytes.NewReader(data))

	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	return FrameFromImage(img)
}

// FrameFromImage converts a Go image into a BGR frame.  The caller must
// Close the returned Mat
func FrameFromImage(img image.Image) (gocv.Mat, error) {

	if img == nil || img.Bounds().Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: image is empty", ErrInvalidFrame)
	}

	frame, err := gocv.ImageToMatRGB(img)

	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	return frame, nil
}

// AnnotateBytes decodes an encoded image and annotates it.  This is the entry
// point for snapshot and upload modes
func (p *Pipeline) AnnotateBytes(ctx context.Context, data []byte, style Style) (*Result, error) {

	frame, err := DecodeFrame(data)
	defer frame.Close()

	if err != nil {
		return nil, err
	}

	return p.Annotate(ctx, frame, style)
}

// AnnotateImage annotates an already decoded Go image
func (p *Pipeline) AnnotateImage(ctx context.Context, img image.Image, style Style) (*Result, error) {

	frame, err := FrameFromImage(img)
	defer frame.Close()

	if err != nil {
		return nil, err
	}

	return p.Annotate(ctx, frame, style)
}
