package liveocr

import (
	"github.com/swdee/go-liveocr/render"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	// DefaultConfidenceThreshold is the confidence a token must exceed
	DefaultConfidenceThreshold = 25
	// MaxConfidenceThreshold is the highest threshold accepted
	MaxConfidenceThreshold = 100
	// MaxBoxThickness is the thickest box line the control surface allows
	MaxBoxThickness = 5
	// MaxTextThickness is the thickest label stroke the control surface allows
	MaxTextThickness = 3
)

// Style is the set of filtering and rendering parameters the pipeline reads
// once at the start of every frame.  A Style is a plain value, it is never
// modified once handed to a StyleStore
type Style struct {
	// ConfidenceThreshold in range 0-100, tokens must score above it
	ConfidenceThreshold int
	BoxColor            render.BGR
	TextColor           render.BGR
	// BoxThickness and TextThickness are at least 1
	BoxThickness  int
	TextThickness int
}

// DefaultStyle returns the startup style, green one pixel boxes and labels
// with a threshold of 25
func DefaultStyle() Style {
	return Style{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		BoxColor:            render.Green,
		TextColor:           render.Green,
		BoxThickness:        1,
		TextThickness:       1,
	}
}

// Normalize returns the style with the threshold restricted to 0-100 and the
// thicknesses to at least 1
func (s Style) Normalize() Style {
	s.ConfidenceThreshold = clampInt(s.ConfidenceThreshold, 0, MaxConfidenceThreshold)
	s.BoxThickness = max(s.BoxThickness, 1)
	s.TextThickness = max(s.TextThickness, 1)
	return s
}

// RenderOptions converts the style into render options on top of the given
// base label font
func (s Style) RenderOptions(font render.Font) render.Options {

	font.Color = s.TextColor
	font.Thickness = s.TextThickness

	return render.Options{
		BoxColor:     s.BoxColor,
		BoxThickness: s.BoxThickness,
		Font:         font,
	}
}

// WithConfidenceThreshold returns the style with the threshold set, clamped to
// 0-100
func (s Style) WithConfidenceThreshold(v int) Style {
	s.ConfidenceThreshold = clampInt(v, 0, MaxConfidenceThreshold)
	return s
}

// WithBoxThickness returns the style with the box thickness clamped to 1-5
func (s Style) WithBoxThickness(v int) Style {
	s.BoxThickness = clampInt(v, 1, MaxBoxThickness)
	return s
}

// WithTextThickness returns the style with the text thickness clamped to 1-3
func (s Style) WithTextThickness(v int) Style {
	s.TextThickness = clampInt(v, 1, MaxTextThickness)
	return s
}

// WithBoxColor returns the style with the box colour parsed from a hex string.
// A malformed string sets default green and returns ErrInvalidColorSpec
// alongside the usable style
func (s Style) WithBoxColor(hex string) (Style, error) {
	c, err := render.ParseHexColor(hex)
	s.BoxColor = c
	return s, err
}

// WithTextColor returns the style with the text colour parsed from a hex
// string, see WithBoxColor
func (s Style) WithTextColor(hex string) (Style, error) {
	c, err := render.ParseHexColor(hex)
	s.TextColor = c
	return s, err
}

// StyleStore holds the live Style shared between the control surface and the
// pipeline.  Updates replace the whole Style atomically so a reader only ever
// sees a complete old or complete new value, no locking is required
type StyleStore struct {
	current *atomic.Pointer[Style]
	logger  *zap.SugaredLogger
}

// NewStyleStore returns a store holding DefaultStyle.  A nil logger disables
// logging of rejected colour strings
func NewStyleStore(logger *zap.SugaredLogger) *StyleStore {

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	def := DefaultStyle()

	return &StyleStore{
		current: atomic.NewPointer(&def),
		logger:  logger,
	}
}

// Load returns the current style
func (s *StyleStore) Load() Style {
	return *s.current.Load()
}

// Store replaces the current style
func (s *StyleStore) Store(style Style) {
	style = style.Normalize()
	s.current.Store(&style)
}

// Update applies fn to the current style and stores the result.  If another
// writer replaced the style meanwhile fn is run again on the newer value so no
// update is lost.  The stored style is returned
func (s *StyleStore) Update(fn func(Style) Style) Style {

	for {
		old := s.current.Load()
		next := fn(*old).Normalize()

		if s.current.CompareAndSwap(old, &next) {
			return next
		}
	}
}

// Reset restores DefaultStyle
func (s *StyleStore) Reset() {
	s.Store(DefaultStyle())
}

// SetConfidenceThreshold sets the threshold, clamped to 0-100
func (s *StyleStore) SetConfidenceThreshold(v int) {
	s.Update(func(st Style) Style {
		return st.WithConfidenceThreshold(v)
	})
}

// SetBoxThickness sets the box thickness, clamped to 1-5
func (s *StyleStore) SetBoxThickness(v int) {
	s.Update(func(st Style) Style {
		return st.WithBoxThickness(v)
	})
}

// SetTextThickness sets the label thickness, clamped to 1-3
func (s *StyleStore) SetTextThickness(v int) {
	s.Update(func(st Style) Style {
		return st.WithTextThickness(v)
	})
}

// SetBoxColor sets the box colour from a six hex digit string.  A malformed
// string is logged and default green used instead.  The colour applied is
// returned
func (s *StyleStore) SetBoxColor(hex string) render.BGR {

	var err error

	st := s.Update(func(st Style) Style {
		st, err = st.WithBoxColor(hex)
		return st
	})

	if err != nil {
		s.logger.Warnw("Invalid box color, using default", "color", hex, "error", err)
	}

	return st.BoxColor
}

// SetTextColor sets the label colour from a six hex digit string, see
// SetBoxColor
func (s *StyleStore) SetTextColor(hex string) render.BGR {

	var err error

	st := s.Update(func(st Style) Style {
		st, err = st.WithTextColor(hex)
		return st
	})

	if err != nil {
		s.logger.Warnw("Invalid text color, using default", "color", hex, "error", err)
	}

	return st.TextColor
}

// clampInt restricts v to the range lo to hi
func clampInt(v, lo, hi int) int {

	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
