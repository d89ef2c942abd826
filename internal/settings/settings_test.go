package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/adapty/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, 24, s.FontSize)
	assert.Equal(t, "system-ui", s.FontFamily)
	assert.InDelta(t, 0.6, s.AnimationSpeed, 1e-9)
	assert.False(t, s.DarkMode)
	assert.False(t, s.HighContrast)
	assert.False(t, s.ReducedMotion)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"font too small", func(s *Settings) { s.FontSize = 15 }, "font_size"},
		{"font too large", func(s *Settings) { s.FontSize = 49 }, "font_size"},
		{"family empty", func(s *Settings) { s.FontFamily = "" }, "font_family"},
		{"speed too low", func(s *Settings) { s.AnimationSpeed = 0.05 }, "animation_speed"},
		{"speed too high", func(s *Settings) { s.AnimationSpeed = 1.5 }, "animation_speed"},
		{"card color", func(s *Settings) { s.CardColor = "blue" }, "card_color"},
		{"text color", func(s *Settings) { s.TextColor = "#12345" }, "text_color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)

			err := s.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrInvalidSettings))

			fields := errors.As(err).Details["fields"].(map[string]string)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidate_Bounds(t *testing.T) {
	s := Default()
	s.FontSize = MinFontSize
	s.AnimationSpeed = MinAnimationSpeed
	require.NoError(t, s.Validate())

	s.FontSize = MaxFontSize
	s.AnimationSpeed = MaxAnimationSpeed
	require.NoError(t, s.Validate())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		dark, high   bool
		reduced      bool
		wantBg       string
		wantFg       string
		wantDuration float64
	}{
		{"plain", false, false, false, "#e3f2fd", "#0d47a1", 0.6},
		{"dark without contrast keeps card colors", true, false, false, "#e3f2fd", "#0d47a1", 0.6},
		{"high contrast light", false, true, false, "#FFFFFF", "#000000", 0.6},
		{"high contrast dark", true, true, false, "#000000", "#FFFFFF", 0.6},
		{"reduced motion", false, false, true, "#e3f2fd", "#0d47a1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			s.DarkMode = tt.dark
			s.HighContrast = tt.high
			s.ReducedMotion = tt.reduced

			d := s.Resolve()
			assert.Equal(t, tt.wantBg, d.Background)
			assert.Equal(t, tt.wantFg, d.Foreground)
			assert.InDelta(t, tt.wantDuration, d.TransitionSeconds, 1e-9)
			assert.Equal(t, s.FontSize, d.FontSize)
			assert.Equal(t, s.FontFamily, d.FontFamily)
		})
	}
}

func TestResolve_ReducedMotionIgnoresSpeed(t *testing.T) {
	s := Default()
	s.ReducedMotion = true
	s.AnimationSpeed = 1.0
	assert.Zero(t, s.Resolve().TransitionSeconds)
}

func TestWithPreset(t *testing.T) {
	s := Default()

	got, err := s.WithPreset("  soft green ")
	require.NoError(t, err)
	assert.Equal(t, "#e8f5e9", got.CardColor)
	assert.Equal(t, "#1b5e20", got.TextColor)
	assert.Equal(t, "#e3f2fd", s.CardColor, "original value must not change")

	_, err = s.WithPreset("neon")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestColorPresets_Valid(t *testing.T) {
	ps := ColorPresets()
	require.Len(t, ps, 6)
	for _, p := range ps {
		s := Default()
		s.CardColor, s.TextColor = p.Background, p.Text
		assert.NoError(t, s.Validate(), p.Name)
	}

	ps[0].Name = "mutated"
	assert.Equal(t, "Light Blue", ColorPresets()[0].Name)
}

func TestSpeedLabel(t *testing.T) {
	assert.Equal(t, "very fast", SpeedLabel(0.1))
	assert.Equal(t, "fast", SpeedLabel(0.3))
	assert.Equal(t, "fast", SpeedLabel(0.5))
	assert.Equal(t, "normal", SpeedLabel(0.6))
	assert.Equal(t, "normal", SpeedLabel(1.0))
}

func TestFontOptions(t *testing.T) {
	opts := FontOptions()
	require.Len(t, opts, 5)
	assert.Equal(t, "system-ui", opts[0].Family)
}
