package liveocr

import (
	"context"
	"errors"
	"github.com/google/go-cmp/cmp"
	"github.com/swdee/go-liveocr/render"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseStyleSettings(t *testing.T) {

	data := []byte(`{
		// live tweaks
		conf_threshold: 40,
		box_color: "#FF0000",
		text_thickness: 2,
	}`)

	ss, err := ParseStyleSettings(data)

	if err != nil {
		t.Fatalf("ParseStyleSettings() error: %v", err)
	}

	st, err := ss.ApplyTo(DefaultStyle())

	if err != nil {
		t.Fatalf("ApplyTo() error: %v", err)
	}

	expected := DefaultStyle()
	expected.ConfidenceThreshold = 40
	expected.BoxColor = render.BGR{B: 0, G: 0, R: 255}
	expected.TextThickness = 2

	if diff := cmp.Diff(expected, st); diff != "" {
		t.Errorf("applied style mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyToInvalidColors(t *testing.T) {

	bad := "notacolor"
	ss := StyleSettings{BoxColor: &bad, TextColor: &bad}

	start := DefaultStyle()
	start.BoxColor = render.Pink
	start.TextColor = render.Pink

	st, err := ss.ApplyTo(start)

	if !errors.Is(err, ErrInvalidColorSpec) {
		t.Errorf("expected ErrInvalidColorSpec, got %v", err)
	}

	if st.BoxColor != render.Green || st.TextColor != render.Green {
		t.Errorf("expected green fallback, got %+v", st)
	}
}

func TestSettingsFromStyleRoundTrip(t *testing.T) {

	st := Style{
		ConfidenceThreshold: 70,
		BoxColor:            render.BGR{B: 10, G: 20, R: 30},
		TextColor:           render.BGR{B: 40, G: 50, R: 60},
		BoxThickness:        3,
		TextThickness:       2,
	}

	s := NewStyleStore(nil)
	got := s.Apply(SettingsFromStyle(st))

	if got != st {
		t.Errorf("round trip = %+v, expected %+v", got, st)
	}
}

func TestWatchStyleFile(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "style.json5")

	if err := os.WriteFile(path, []byte(`{conf_threshold: 40}`), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStyleStore(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- WatchStyleFile(ctx, path, store, nil)
	}()

	waitFor(t, func() bool { return store.Load().ConfidenceThreshold == 40 })

	if err := os.WriteFile(path, []byte(`{conf_threshold: 75, box_thickness: 3}`), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		st := store.Load()
		return st.ConfidenceThreshold == 75 && st.BoxThickness == 3
	})

	// a broken file keeps the current style
	if err := os.WriteFile(path, []byte(`{conf_threshold: `), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)

	if got := store.Load().ConfidenceThreshold; got != 75 {
		t.Errorf("broken style file changed threshold to %d", got)
	}

	cancel()

	if err := <-done; err != nil {
		t.Errorf("WatchStyleFile() error: %v", err)
	}
}

// waitFor polls cond until it is true or fails the test after a few seconds
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met before deadline")
}
