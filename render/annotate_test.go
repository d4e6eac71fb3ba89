package render

import (
	"bytes"
	"github.com/swdee/go-liveocr/postprocess"
	"gocv.io/x/gocv"
	"image"
	"testing"
)

// grayFrame returns a uniform BGR frame
func grayFrame(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0),
		rows, cols, gocv.MatTypeCV8UC3)
}

func TestAnnotateNoTokensIsIdentical(t *testing.T) {

	src := grayFrame(60, 120)
	defer src.Close()

	dst := Annotate(src, nil, DefaultOptions())
	defer dst.Close()

	if dst.Rows() != src.Rows() || dst.Cols() != src.Cols() || dst.Type() != src.Type() {
		t.Fatalf("annotated frame has different shape")
	}

	if !bytes.Equal(src.ToBytes(), dst.ToBytes()) {
		t.Errorf("expected pixel identical copy when no tokens are retained")
	}
}

func TestAnnotateDrawsOnCopy(t *testing.T) {

	src := grayFrame(100, 200)
	defer src.Close()

	before := src.ToBytes()

	red := BGR{B: 0, G: 0, R: 255}
	blue := BGR{B: 255, G: 0, R: 0}

	opts := DefaultOptions()
	opts.BoxColor = red
	opts.BoxThickness = 2
	opts.Font.Color = blue

	tokens := []postprocess.Token{
		{Text: "cat", X: 10, Y: 40, Width: 60, Height: 30, Confidence: 90},
	}

	dst := Annotate(src, tokens, opts)
	defer dst.Close()

	if !bytes.Equal(before, src.ToBytes()) {
		t.Fatalf("source frame was modified")
	}

	// top left corner of the box
	px := dst.GetVecbAt(40, 10)

	if px[0] != red.B || px[1] != red.G || px[2] != red.R {
		t.Errorf("expected box colour at corner, got %v", px)
	}

	// centre of the box is untouched
	px = dst.GetVecbAt(55, 40)

	if px[0] != 128 || px[1] != 128 || px[2] != 128 {
		t.Errorf("expected box interior untouched, got %v", px)
	}

	// label is drawn somewhere in the band above the box
	labelBand := dst.Region(image.Rect(0, 10, 200, 35))
	defer labelBand.Close()

	found := false

	for row := 0; row < labelBand.Rows() && !found; row++ {
		for col := 0; col < labelBand.Cols(); col++ {
			v := labelBand.GetVecbAt(row, col)

			if v[0] == blue.B && v[1] == blue.G && v[2] == blue.R {
				found = true
				break
			}
		}
	}

	if !found {
		t.Errorf("expected label text pixels above the box")
	}
}

// rowHas reports whether any pixel in row between cols lo and hi has colour c
func rowHas(img gocv.Mat, row, lo, hi int, c BGR) bool {

	for col := lo; col < hi; col++ {
		v := img.GetVecbAt(row, col)

		if v[0] == c.B && v[1] == c.G && v[2] == c.R {
			return true
		}
	}

	return false
}

func TestAnnotateLaterTokensOverdraw(t *testing.T) {

	src := grayFrame(100, 200)
	defer src.Close()

	red := BGR{B: 0, G: 0, R: 255}
	blue := BGR{B: 255, G: 0, R: 0}

	opts := DefaultOptions()
	opts.BoxColor = red
	opts.Font.Color = blue

	// label of first sits on baseline y=30, the top edge of second's box
	// runs through it at y=25
	first := postprocess.Token{Text: "HHHH", X: 10, Y: 40, Width: 90, Height: 40, Confidence: 90}
	second := postprocess.Token{Text: "", X: 0, Y: 25, Width: 150, Height: 65, Confidence: 90}

	dst := Annotate(src, []postprocess.Token{first, second}, opts)
	defer dst.Close()

	if rowHas(dst, 25, 0, 150, blue) {
		t.Errorf("label of the first token drawn over the box of the second")
	}

	if !rowHas(dst, 25, 0, 150, red) {
		t.Errorf("expected box edge of the second token on row 25")
	}

	// reversed order leaves the label on top
	rev := Annotate(src, []postprocess.Token{second, first}, opts)
	defer rev.Close()

	if !rowHas(rev, 25, 10, 100, blue) {
		t.Errorf("expected label of the later token over the earlier box edge")
	}
}
