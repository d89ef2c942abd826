// Package settings holds the display and accessibility configuration consumed by the card renderer.
//
// Settings is an immutable value. Changes replace the whole value; there are no partial patches.
package settings

import (
	stderrors "errors"
	"strings"

	"github.com/hpungsan/adapty/internal/errors"
	"github.com/hpungsan/adapty/pkg/validator"
)

const (
	MinFontSize = 16
	MaxFontSize = 48

	MinAnimationSpeed = 0.1
	MaxAnimationSpeed = 1.0
)

// Settings is the full recognized option set.
type Settings struct {
	FontSize       int     `json:"font_size" validate:"min=16,max=48"`
	FontFamily     string  `json:"font_family" validate:"required,max=100"`
	DarkMode       bool    `json:"dark_mode"`
	HighContrast   bool    `json:"high_contrast"`
	ReducedMotion  bool    `json:"reduced_motion"`
	AnimationSpeed float64 `json:"animation_speed" validate:"gte=0.1,lte=1"`
	CardColor      string  `json:"card_color" validate:"required,hexcolor"`
	TextColor      string  `json:"text_color" validate:"required,hexcolor"`
}

// Default returns the settings a fresh install starts with.
func Default() Settings {
	return Settings{
		FontSize:       24,
		FontFamily:     "system-ui",
		AnimationSpeed: 0.6,
		CardColor:      "#e3f2fd",
		TextColor:      "#0d47a1",
	}
}

// Validate reports every out-of-range or malformed field as INVALID_SETTINGS.
func (s Settings) Validate() error {
	err := validator.ValidateStruct(s)
	if err == nil {
		return nil
	}
	var fe validator.FieldErrors
	if stderrors.As(err, &fe) {
		return errors.NewInvalidSettings(map[string]string(fe))
	}
	return errors.NewInternal(err)
}

// Display is the resolved form the renderer consumes.
type Display struct {
	FontSize          int     `json:"font_size"`
	FontFamily        string  `json:"font_family"`
	Background        string  `json:"background"`
	Foreground        string  `json:"foreground"`
	TransitionSeconds float64 `json:"transition_seconds"`
}

// Resolve computes the effective colors and flip duration.
// High contrast overrides the card colors with black and white chosen by dark mode.
// Reduced motion forces an instantaneous flip regardless of the configured speed.
func (s Settings) Resolve() Display {
	d := Display{
		FontSize:          s.FontSize,
		FontFamily:        s.FontFamily,
		Background:        s.CardColor,
		Foreground:        s.TextColor,
		TransitionSeconds: s.AnimationSpeed,
	}
	if s.HighContrast {
		if s.DarkMode {
			d.Background, d.Foreground = "#000000", "#FFFFFF"
		} else {
			d.Background, d.Foreground = "#FFFFFF", "#000000"
		}
	}
	if s.ReducedMotion {
		d.TransitionSeconds = 0
	}
	return d
}

// WithPreset returns a copy of s using the named color preset.
// The lookup ignores case and surrounding whitespace.
func (s Settings) WithPreset(name string) (Settings, error) {
	p, ok := FindPreset(name)
	if !ok {
		return s, errors.NewNotFound("color preset", name)
	}
	s.CardColor = p.Background
	s.TextColor = p.Text
	return s, nil
}

// SpeedLabel describes an animation speed in words.
func SpeedLabel(seconds float64) string {
	switch {
	case seconds < 0.3:
		return "very fast"
	case seconds < 0.6:
		return "fast"
	default:
		return "normal"
	}
}

// FontOption is one entry of the font picker.
type FontOption struct {
	Label  string `json:"label"`
	Family string `json:"family"`
}

// FontOptions lists the fonts offered by the settings panel.
func FontOptions() []FontOption {
	return []FontOption{
		{Label: "System Default", Family: "system-ui"},
		{Label: "OpenDyslexic", Family: "OpenDyslexic"},
		{Label: "Comic Sans", Family: "Comic Sans MS"},
		{Label: "Arial", Family: "Arial"},
		{Label: "Georgia", Family: "Georgia"},
	}
}

// ColorPreset is a named background/text color pair.
type ColorPreset struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

var presets = []ColorPreset{
	{Name: "Light Blue", Background: "#e3f2fd", Text: "#0d47a1"},
	{Name: "Soft Green", Background: "#e8f5e9", Text: "#1b5e20"},
	{Name: "Pastel Yellow", Background: "#fffde7", Text: "#f57f17"},
	{Name: "Light Pink", Background: "#fce4ec", Text: "#880e4f"},
	{Name: "Soft Purple", Background: "#f3e5f5", Text: "#4a148c"},
	{Name: "Light Orange", Background: "#fff3e0", Text: "#e65100"},
}

// ColorPresets returns a copy of the preset list.
func ColorPresets() []ColorPreset {
	out := make([]ColorPreset, len(presets))
	copy(out, presets)
	return out
}

// FindPreset looks a preset up by name.
func FindPreset(name string) (ColorPreset, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if strings.ToLower(p.Name) == want {
			return p, true
		}
	}
	return ColorPreset{}, false
}
