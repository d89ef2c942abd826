package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/settings"
)

// SettingsOutput is the stored settings together with their resolved form.
type SettingsOutput struct {
	Settings   settings.Settings `json:"settings"`
	Display    settings.Display  `json:"display"`
	SpeedLabel string            `json:"speed_label"`
	Stored     bool              `json:"stored"` // false when defaults are in effect
}

func newSettingsOutput(s settings.Settings, stored bool) *SettingsOutput {
	return &SettingsOutput{
		Settings:   s,
		Display:    s.Resolve(),
		SpeedLabel: settings.SpeedLabel(s.AnimationSpeed),
		Stored:     stored,
	}
}

// GetSettings returns the stored settings, or the defaults if none were saved.
func GetSettings(ctx context.Context, database *sql.DB) (*SettingsOutput, error) {
	s, found, err := db.GetSettings(ctx, database)
	if err != nil {
		return nil, err
	}
	if !found {
		s = settings.Default()
	}
	return newSettingsOutput(s, found), nil
}

// SetSettings validates and stores a complete settings value, replacing the previous one.
func SetSettings(ctx context.Context, database *sql.DB, s settings.Settings) (*SettingsOutput, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := db.PutSettings(ctx, database, s); err != nil {
		return nil, err
	}
	return newSettingsOutput(s, true), nil
}

// ApplyPreset stores the current settings with the named color preset.
func ApplyPreset(ctx context.Context, database *sql.DB, preset string) (*SettingsOutput, error) {
	cur, err := GetSettings(ctx, database)
	if err != nil {
		return nil, err
	}
	next, err := cur.Settings.WithPreset(preset)
	if err != nil {
		return nil, err
	}
	return SetSettings(ctx, database, next)
}
