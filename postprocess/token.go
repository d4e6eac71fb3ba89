package postprocess

import (
	"image"
	"math"
	"strconv"
	"strings"
)

// UnscoredConfidence is the confidence assigned to a token whose score could
// not be read from the detector output.  It is below every valid threshold so
// such tokens are always rejected by FilterTokens
const UnscoredConfidence = -1

// Token is a single fragment of text found by a detector
type Token struct {
	// Text is the recognised text, it may be empty or whitespace
	Text string
	// X, Y is the top left corner of the bounding box in source image pixels
	X int
	Y int
	// Width and Height of the bounding box
	Width  int
	Height int
	// Confidence is the detector score in the range 0-100, or
	// UnscoredConfidence
	Confidence int
}

// NewToken returns a Token for the given rectangle.  The part of the
// rectangle at negative coordinates is cut off
func NewToken(text string, rect image.Rectangle, confidence int) Token {

	// keep only the part of the box inside the image quadrant
	rect = rect.Canon().Intersect(image.Rect(0, 0, math.MaxInt, math.MaxInt))

	return Token{
		Text:       text,
		X:          rect.Min.X,
		Y:          rect.Min.Y,
		Width:      rect.Dx(),
		Height:     rect.Dy(),
		Confidence: confidence,
	}
}

// Rect returns the bounding box of the token
func (t Token) Rect() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+t.Width, t.Y+t.Height)
}

// ParseConfidence converts a confidence score as reported in text form by a
// detector into an integer.  Decimal scores are truncated.  Anything that can
// not be read or lies outside 0-100 returns UnscoredConfidence
func ParseConfidence(s string) int {

	s = strings.TrimSpace(s)

	if i, err := strconv.Atoi(s); err == nil {
		return checkConfidence(i)
	}

	f, err := strconv.ParseFloat(s, 64)

	if err != nil {
		return UnscoredConfidence
	}

	return ConfidenceFromFloat(f)
}

// ConfidenceFromFloat truncates a floating point score to an integer
// confidence
func ConfidenceFromFloat(f float64) int {

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return UnscoredConfidence
	}

	return checkConfidence(int(f))
}

// checkConfidence restricts confidence to the valid range
func checkConfidence(i int) int {

	if i < 0 || i > 100 {
		return UnscoredConfidence
	}

	return i
}
