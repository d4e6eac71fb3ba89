package render

import (
	"github.com/swdee/go-liveocr/postprocess"
	"gocv.io/x/gocv"
	"image"
)

// Options defines how token boxes and labels are drawn
type Options struct {
	BoxColor     BGR
	BoxThickness int
	Font         Font
}

// DefaultOptions returns green one pixel boxes with the default label font
func DefaultOptions() Options {
	return Options{
		BoxColor:     Green,
		BoxThickness: 1,
		Font:         DefaultFont(),
	}
}

// Annotate returns a copy of src with a box drawn around every token and the
// token's text written above the box.  Tokens are drawn in the order given so
// later boxes overdraw earlier ones.  src is not modified, with no tokens the
// returned Mat is an exact copy.  The caller must Close the returned Mat
func Annotate(src gocv.Mat, tokens []postprocess.Token, opts Options) gocv.Mat {

	dst := src.Clone()
	TokenBoxes(&dst, tokens, opts)

	return dst
}

// TokenBoxes renders the bounding boxes and labels of the tokens onto img
func TokenBoxes(img *gocv.Mat, tokens []postprocess.Token, opts Options) {

	boxThickness := max(opts.BoxThickness, 1)
	textThickness := max(opts.Font.Thickness, 1)
	boxClr := opts.BoxColor.ToRGBA()
	textClr := opts.Font.Color.ToRGBA()

	for _, tok := range tokens {

		// draw rectangle around detected text
		gocv.Rectangle(img, tok.Rect(), boxClr, boxThickness)

		// label sits above the top left corner of the box
		labelPosition := image.Pt(tok.X, tok.Y-opts.Font.LabelOffset)

		gocv.PutTextWithParams(img, tok.Text, labelPosition,
			opts.Font.Face, opts.Font.Scale, textClr, textThickness,
			opts.Font.LineType, false)
	}
}
