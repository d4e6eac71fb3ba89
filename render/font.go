package render

import (
	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     BGR
	Thickness int
	LineType  gocv.LineType
	// LabelOffset is the number of pixels above a box's top edge the text
	// baseline is placed at
	LabelOffset int
}

// DefaultFont returns default font settings for token labels
func DefaultFont() Font {
	return Font{
		Face:        gocv.FontHersheySimplex,
		Scale:       0.5,
		Color:       Green,
		Thickness:   1,
		LineType:    gocv.Line8,
		LabelOffset: 10,
	}
}

// BannerFont returns the font used for the statistics banner
func BannerFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     Pink,
		Thickness: 1,
		LineType:  gocv.LineAA,
	}
}
