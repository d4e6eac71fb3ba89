package tesseract

import (
	"github.com/google/go-cmp/cmp"
	"github.com/otiai10/gosseract/v2"
	"github.com/swdee/go-liveocr/postprocess"
	"image"
	"math"
	"testing"
)

func TestTokensFromBoxes(t *testing.T) {

	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(10, 20, 60, 40), Word: "EXIT", Confidence: 91.7},
		{Box: image.Rect(70, 20, 90, 40), Word: "", Confidence: 95},
		{Box: image.Rect(5, 5, 8, 8), Word: "~", Confidence: -1},
		{Box: image.Rect(0, 0, 4, 4), Word: "?", Confidence: math.NaN()},
	}

	expected := []postprocess.Token{
		{Text: "EXIT", X: 10, Y: 20, Width: 50, Height: 20, Confidence: 91},
		{Text: "", X: 70, Y: 20, Width: 20, Height: 20, Confidence: 95},
		{Text: "~", X: 5, Y: 5, Width: 3, Height: 3, Confidence: postprocess.UnscoredConfidence},
		{Text: "?", X: 0, Y: 0, Width: 4, Height: 4, Confidence: postprocess.UnscoredConfidence},
	}

	if diff := cmp.Diff(expected, TokensFromBoxes(boxes)); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}

	if got := TokensFromBoxes(nil); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

func TestDefaultParams(t *testing.T) {

	p := DefaultParams()

	if diff := cmp.Diff([]string{"eng"}, p.Languages); diff != "" {
		t.Errorf("languages mismatch:\n%s", diff)
	}

	if p.PageSegMode != gosseract.PSM_AUTO || p.Mode != ModeWords {
		t.Errorf("unexpected defaults %+v", p)
	}
}
