package liveocr

import (
	"context"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"os"
	"path/filepath"
)

// StyleSettings is the form the control surface exchanges styles in, with
// colours as "#RRGGBB" strings.  Nil fields are left unchanged by Apply
type StyleSettings struct {
	ConfidenceThreshold *int    `json:"conf_threshold,omitempty"`
	BoxColor            *string `json:"box_color,omitempty"`
	TextColor           *string `json:"text_color,omitempty"`
	BoxThickness        *int    `json:"box_thickness,omitempty"`
	TextThickness       *int    `json:"text_thickness,omitempty"`
}

// SettingsFromStyle returns fully populated settings for the style
func SettingsFromStyle(s Style) StyleSettings {

	boxColor := s.BoxColor.Hex()
	textColor := s.TextColor.Hex()

	return StyleSettings{
		ConfidenceThreshold: &s.ConfidenceThreshold,
		BoxColor:            &boxColor,
		TextColor:           &textColor,
		BoxThickness:        &s.BoxThickness,
		TextThickness:       &s.TextThickness,
	}
}

// ApplyTo returns the style with every non nil setting applied using the
// same clamping as the StyleStore setters.  Malformed colours are set to
// default green and reported in the returned error, the returned style is
// always usable
func (ss StyleSettings) ApplyTo(st Style) (Style, error) {

	var errs, err error

	if ss.ConfidenceThreshold != nil {
		st = st.WithConfidenceThreshold(*ss.ConfidenceThreshold)
	}

	if ss.BoxColor != nil {
		st, err = st.WithBoxColor(*ss.BoxColor)
		errs = multierr.Append(errs, err)
	}

	if ss.TextColor != nil {
		st, err = st.WithTextColor(*ss.TextColor)
		errs = multierr.Append(errs, err)
	}

	if ss.BoxThickness != nil {
		st = st.WithBoxThickness(*ss.BoxThickness)
	}

	if ss.TextThickness != nil {
		st = st.WithTextThickness(*ss.TextThickness)
	}

	return st, errs
}

// Apply updates the store with all settings in a single swap so the next
// frame sees every change at once.  Colour errors are logged, not returned
func (s *StyleStore) Apply(ss StyleSettings) Style {

	var err error

	st := s.Update(func(st Style) Style {
		st, err = ss.ApplyTo(st)
		return st
	})

	for _, e := range multierr.Errors(err) {
		s.logger.Warnw("Invalid color in style settings, using default", "error", e)
	}

	return st
}

// ParseStyleSettings decodes JSON5 encoded settings
func ParseStyleSettings(data []byte) (StyleSettings, error) {

	var ss StyleSettings

	if err := json5.Unmarshal(data, &ss); err != nil {
		return StyleSettings{}, fmt.Errorf("error decoding style settings: %w", err)
	}

	return ss, nil
}

// LoadStyleFile reads style settings from a JSON5 file
func LoadStyleFile(path string) (StyleSettings, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return StyleSettings{}, fmt.Errorf("error reading style file: %w", err)
	}

	return ParseStyleSettings(data)
}

// WatchStyleFile applies the style file at path to the store and then again
// every time the file is written, until ctx is cancelled.  A file that fails
// to load is logged and the current style kept.  The parent directory is
// watched so editors that replace the file on save are handled
func WatchStyleFile(ctx context.Context, path string, store *StyleStore,
	logger *zap.SugaredLogger) error {

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()

	if err != nil {
		return fmt.Errorf("error creating file watcher: %w", err)
	}

	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("error watching style file directory: %w", err)
	}

	reload := func() {
		ss, err := LoadStyleFile(path)

		if err != nil {
			logger.Warnw("Could not load style file, keeping current style",
				"path", path, "error", err)
			return
		}

		st := store.Apply(ss)
		logger.Infow("Applied style file", "path", path, "style", st)
	}

	reload()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != path {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				reload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warnw("Style file watcher error", "error", err)
		}
	}
}
