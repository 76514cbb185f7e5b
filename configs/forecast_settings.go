package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ForecastSettings tunes the forecast API. Engine constants are fixed and not
// configurable here.
type ForecastSettings struct {
	DefaultHorizonMonths int   `yaml:"default_horizon_months" json:"default_horizon_months" default:"3" validate:"gte=0,ltefield=MaxHorizonMonths"`
	MaxHorizonMonths     int   `yaml:"max_horizon_months" json:"max_horizon_months" default:"24" validate:"gte=1,lte=120"`
	NoiseSeed            int64 `yaml:"noise_seed" json:"-"`
}

// DefaultForecastSettings returns the settings used when no file is present.
func DefaultForecastSettings() *ForecastSettings {
	settings := &ForecastSettings{}
	// tags are static, Set cannot fail for this struct
	_ = defaults.Set(settings)
	return settings
}

var settingsValidator = validator.New()

// LoadForecastSettings reads forecast settings from a YAML file. Keys missing
// from the file keep their defaults; a missing file yields the defaults.
func LoadForecastSettings(path string) (*ForecastSettings, error) {
	settings := DefaultForecastSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read forecast settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse forecast settings %s: %w", path, err)
	}
	if err := settingsValidator.Struct(settings); err != nil {
		return nil, fmt.Errorf("invalid forecast settings %s: %w", path, err)
	}
	return settings, nil
}
