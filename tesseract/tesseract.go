// Package tesseract provides a text Detector backed by the Tesseract OCR
// engine through gosseract
package tesseract

import (
	"context"
	"fmt"
	"github.com/otiai10/gosseract/v2"
	"github.com/swdee/go-liveocr"
	"github.com/swdee/go-liveocr/postprocess"
	"gocv.io/x/gocv"
	"strings"
)

// Mode selects how word results are read back from Tesseract
type Mode int

const (
	// ModeWords reads word boxes through the result iterator
	ModeWords Mode = iota
	// ModeHOCR renders the page as hOCR and parses the word spans from it
	ModeHOCR
)

// Params defines the Tesseract settings used by a Detector
type Params struct {
	// Languages are the trained data sets to load, eg: "eng"
	Languages []string
	// PageSegMode is the Tesseract page segmentation mode
	PageSegMode gosseract.PageSegMode
	// Whitelist restricts recognised characters, empty allows all
	Whitelist string
	// Variables are additional Tesseract variables to set
	Variables map[string]string
	// Mode selects word box or hOCR output
	Mode Mode
}

// DefaultParams returns English with automatic page segmentation
func DefaultParams() Params {
	return Params{
		Languages:   []string{"eng"},
		PageSegMode: gosseract.PSM_AUTO,
		Mode:        ModeWords,
	}
}

// Detector finds words in a binary image with Tesseract.  A Detector holds a
// single engine instance and must not be used by more than one goroutine at
// a time, use NewPool for concurrent pipelines
type Detector struct {
	client *gosseract.Client
	params Params
}

// NewDetector creates a Tesseract client configured with params
func NewDetector(params Params) (*Detector, error) {

	client := gosseract.NewClient()

	if err := configure(client, params); err != nil {
		client.Close()
		return nil, err
	}

	return &Detector{
		client: client,
		params: params,
	}, nil
}

// configure applies params to the client
func configure(client *gosseract.Client, params Params) error {

	if len(params.Languages) > 0 {
		if err := client.SetLanguage(params.Languages...); err != nil {
			return fmt.Errorf("error setting OCR language %s: %w",
				strings.Join(params.Languages, "+"), err)
		}
	}

	if err := client.SetPageSegMode(params.PageSegMode); err != nil {
		return fmt.Errorf("error setting page segmentation mode: %w", err)
	}

	if params.Whitelist != "" {
		if err := client.SetWhitelist(params.Whitelist); err != nil {
			return fmt.Errorf("error setting character whitelist: %w", err)
		}
	}

	for k, v := range params.Variables {
		if err := client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("error setting variable %s: %w", k, err)
		}
	}

	return nil
}

// Detect runs OCR on img and returns a token per recognised word.  The
// engine call itself can not be interrupted, ctx is checked before it starts
func (d *Detector) Detect(ctx context.Context, img gocv.Mat) ([]postprocess.Token, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if img.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)

	if err != nil {
		return nil, fmt.Errorf("error encoding image for OCR: %w", err)
	}

	defer buf.Close()

	if err := d.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("error setting OCR image: %w", err)
	}

	if d.params.Mode == ModeHOCR {
		return d.detectHOCR()
	}

	boxes, err := d.client.GetBoundingBoxes(gosseract.RIL_WORD)

	if err != nil {
		return nil, fmt.Errorf("error getting word boxes: %w", err)
	}

	return TokensFromBoxes(boxes), nil
}

// detectHOCR reads the words of the current image from hOCR output
func (d *Detector) detectHOCR() ([]postprocess.Token, error) {

	out, err := d.client.HOCRText()

	if err != nil {
		return nil, fmt.Errorf("error rendering hOCR: %w", err)
	}

	tokens, err := postprocess.ParseHOCR(strings.NewReader(out))

	if err != nil {
		return nil, fmt.Errorf("error parsing hOCR: %w", err)
	}

	return tokens, nil
}

// Close releases the Tesseract engine
func (d *Detector) Close() error {
	return d.client.Close()
}

// TokensFromBoxes converts gosseract word boxes to tokens in engine order
func TokensFromBoxes(boxes []gosseract.BoundingBox) []postprocess.Token {

	tokens := make([]postprocess.Token, len(boxes))

	for i, b := range boxes {
		tokens[i] = postprocess.NewToken(b.Word, b.Box,
			postprocess.ConfidenceFromFloat(b.Confidence))
	}

	return tokens
}

// NewPool creates a pool of size Tesseract detectors sharing params
func NewPool(size int, params Params) (*liveocr.Pool, error) {
	return liveocr.NewPool(size, func(i int) (liveocr.Detector, error) {
		return NewDetector(params)
	})
}
