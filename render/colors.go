package render

import (
	"errors"
	"fmt"
	"github.com/lucasb-eyer/go-colorful"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidColorSpec is returned when a colour string is not six hex digits
var ErrInvalidColorSpec = errors.New("invalid color spec")

// BGR is a colour in the blue, green, red channel order frames are stored in
type BGR struct {
	B uint8
	G uint8
	R uint8
}

var (
	// Green is the default box and label colour
	Green = BGR{B: 0, G: 255, R: 0}
	Black = BGR{B: 0, G: 0, R: 0}
	Pink  = BGR{B: 255, G: 0, R: 255}
)

// ToRGBA converts to the color type GoCV drawing functions take.  GoCV
// reorders the channels back to BGR when drawing onto a Mat
func (c BGR) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex returns the colour as a "#RRGGBB" string
func (c BGR) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHexColor converts a six hex digit RGB colour string, with or without a
// leading '#', into BGR channel order
func ParseHexColor(s string) (BGR, error) {

	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	// colorful also accepts the three digit short form, which is not allowed
	if len(hex) != 6 {
		return Green, fmt.Errorf("%w: %q", ErrInvalidColorSpec, s)
	}

	// colorful stops scanning at the first non hex digit without error
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return Green, fmt.Errorf("%w: %q", ErrInvalidColorSpec, s)
	}

	c, err := colorful.Hex("#" + hex)

	if err != nil {
		return Green, fmt.Errorf("%w: %q: %v", ErrInvalidColorSpec, s, err)
	}

	r, g, b := c.RGB255()

	return BGR{B: b, G: g, R: r}, nil
}
