package render

import (
	"gocv.io/x/gocv"
	"image"
)

// Banner blanks out a strip across the top of the image and writes one line
// of text per entry on it.  Used to display processing statistics on the
// live stream
func Banner(img *gocv.Mat, lines []string, font Font) {

	if len(lines) == 0 {
		return
	}

	lineHeight := 16

	// blank out background video
	rect := image.Rect(0, 0, img.Cols(), lineHeight*len(lines)+4)
	gocv.Rectangle(img, rect, Black.ToRGBA(), -1) // -1 fills the rectangle

	for i, line := range lines {
		gocv.PutTextWithParams(img, line, image.Pt(4, lineHeight*(i+1)-2),
			font.Face, font.Scale, font.Color.ToRGBA(), max(font.Thickness, 1),
			font.LineType, false)
	}
}
