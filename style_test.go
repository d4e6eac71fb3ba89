package liveocr

import (
	"github.com/swdee/go-liveocr/render"
	"sync"
	"testing"
)

func TestDefaultStyle(t *testing.T) {

	st := NewStyleStore(nil).Load()
	expected := Style{
		ConfidenceThreshold: 25,
		BoxColor:            render.BGR{B: 0, G: 255, R: 0},
		TextColor:           render.BGR{B: 0, G: 255, R: 0},
		BoxThickness:        1,
		TextThickness:       1,
	}

	if st != expected {
		t.Errorf("default style = %+v, expected %+v", st, expected)
	}
}

func TestStyleStoreSetters(t *testing.T) {

	tests := []struct {
		name     string
		apply    func(s *StyleStore)
		expected func(st Style) bool
	}{
		{"threshold", func(s *StyleStore) { s.SetConfidenceThreshold(60) },
			func(st Style) bool { return st.ConfidenceThreshold == 60 }},
		{"threshold above range", func(s *StyleStore) { s.SetConfidenceThreshold(150) },
			func(st Style) bool { return st.ConfidenceThreshold == 100 }},
		{"threshold below range", func(s *StyleStore) { s.SetConfidenceThreshold(-4) },
			func(st Style) bool { return st.ConfidenceThreshold == 0 }},
		{"box thickness", func(s *StyleStore) { s.SetBoxThickness(4) },
			func(st Style) bool { return st.BoxThickness == 4 }},
		{"box thickness above range", func(s *StyleStore) { s.SetBoxThickness(9) },
			func(st Style) bool { return st.BoxThickness == 5 }},
		{"box thickness zero", func(s *StyleStore) { s.SetBoxThickness(0) },
			func(st Style) bool { return st.BoxThickness == 1 }},
		{"text thickness above range", func(s *StyleStore) { s.SetTextThickness(7) },
			func(st Style) bool { return st.TextThickness == 3 }},
		{"box color", func(s *StyleStore) { s.SetBoxColor("#FF0000") },
			func(st Style) bool { return st.BoxColor == render.BGR{B: 0, G: 0, R: 255} }},
		{"text color", func(s *StyleStore) { s.SetTextColor("0000FF") },
			func(st Style) bool { return st.TextColor == render.BGR{B: 255, G: 0, R: 0} }},
	}

	for _, tc := range tests {
		s := NewStyleStore(nil)
		tc.apply(s)

		if st := s.Load(); !tc.expected(st) {
			t.Errorf("%s: unexpected style %+v", tc.name, st)
		}
	}
}

func TestStyleStoreMalformedColor(t *testing.T) {

	s := NewStyleStore(nil)
	s.SetBoxColor("#123456")
	s.SetTextColor("#654321")

	box := s.SetBoxColor("notacolor")
	text := s.SetTextColor("notacolor")

	if box != render.Green || text != render.Green {
		t.Errorf("expected fallback to green, got box=%+v text=%+v", box, text)
	}

	st := s.Load()

	if st.BoxColor != render.Green || st.TextColor != render.Green {
		t.Errorf("stored style not green: %+v", st)
	}
}

func TestStyleStoreReset(t *testing.T) {

	s := NewStyleStore(nil)
	s.SetConfidenceThreshold(90)
	s.SetBoxColor("#FF00FF")
	s.SetTextThickness(3)
	s.Reset()

	if st := s.Load(); st != DefaultStyle() {
		t.Errorf("expected default style after reset, got %+v", st)
	}
}

func TestStyleStoreNormalizesStore(t *testing.T) {

	s := NewStyleStore(nil)
	s.Store(Style{ConfidenceThreshold: 500, BoxThickness: -2, TextThickness: 0})

	st := s.Load()

	if st.ConfidenceThreshold != 100 || st.BoxThickness != 1 || st.TextThickness != 1 {
		t.Errorf("invariants not enforced: %+v", st)
	}
}

// TestStyleSwapAtomic replaces the style with one of two complete values
// while readers check they never see fields from both
func TestStyleSwapAtomic(t *testing.T) {

	styleA := Style{
		ConfidenceThreshold: 10,
		BoxColor:            render.BGR{B: 1, G: 1, R: 1},
		TextColor:           render.BGR{B: 2, G: 2, R: 2},
		BoxThickness:        1,
		TextThickness:       1,
	}
	styleB := Style{
		ConfidenceThreshold: 90,
		BoxColor:            render.BGR{B: 200, G: 200, R: 200},
		TextColor:           render.BGR{B: 100, G: 100, R: 100},
		BoxThickness:        5,
		TextThickness:       3,
	}

	s := NewStyleStore(nil)
	s.Store(styleA)

	const iterations = 20000

	var wg sync.WaitGroup
	stop := make(chan struct{})
	torn := make(chan Style, 1)

	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if i%2 == 0 {
					s.Store(styleA)
				} else {
					s.Store(styleB)
				}
			}
		}()
	}

	var readers sync.WaitGroup

	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				if st := s.Load(); st != styleA && st != styleB {
					select {
					case torn <- st:
					default:
					}
					return
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()

	select {
	case st := <-torn:
		t.Fatalf("reader observed a mixed style: %+v", st)
	default:
	}
}

func TestStyleUpdateNoLostWrites(t *testing.T) {

	s := NewStyleStore(nil)
	s.SetConfidenceThreshold(0)

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(st Style) Style {
				st.ConfidenceThreshold++
				return st
			})
		}()
	}

	wg.Wait()

	if got := s.Load().ConfidenceThreshold; got != 50 {
		t.Errorf("expected threshold 50 after concurrent updates, got %d", got)
	}
}

func TestStyleRenderOptions(t *testing.T) {

	st := DefaultStyle()
	st.TextThickness = 2
	st.TextColor = render.Pink

	opts := st.RenderOptions(render.DefaultFont())

	if opts.Font.Thickness != 2 || opts.Font.Color != render.Pink {
		t.Errorf("font not taken from style: %+v", opts.Font)
	}

	if opts.Font.Scale != 0.5 || opts.Font.LabelOffset != 10 {
		t.Errorf("base font values lost: %+v", opts.Font)
	}
}
