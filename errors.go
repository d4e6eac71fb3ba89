package liveocr

import (
	"errors"
	"github.com/swdee/go-liveocr/preprocess"
	"github.com/swdee/go-liveocr/render"
)

var (
	// ErrInvalidFrame is returned when the input frame is empty, malformed or
	// could not be decoded.  No annotation is produced
	ErrInvalidFrame = preprocess.ErrInvalidFrame
	// ErrDetectionFailure is the base error of every DetectionError
	ErrDetectionFailure = errors.New("detection failure")
	// ErrInvalidColorSpec is reported when the control surface receives a
	// malformed colour string, default green is substituted
	ErrInvalidColorSpec = render.ErrInvalidColorSpec
	// ErrAlreadyStreaming is returned when Start is called on an active Stream
	ErrAlreadyStreaming = errors.New("stream already started")
	// ErrPoolClosed is returned when detecting on a closed Pool
	ErrPoolClosed = errors.New("detector pool closed")
)

// DetectionError wraps the error returned by a Detector.  The pipeline
// recovers from it by annotating zero tokens and returns it to the caller as a
// non fatal warning in Result.Warning
type DetectionError struct {
	Err error
}

func (e *DetectionError) Error() string {
	return "detection failed: " + e.Err.Error()
}

// Unwrap allows errors.Is to match both ErrDetectionFailure and the
// underlying detector error
func (e *DetectionError) Unwrap() []error {
	return []error{ErrDetectionFailure, e.Err}
}
