package srs

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the scheduling constants. Use DefaultConfig as a base and
// override individual fields.
type Config struct {
	EaseFactorStart        float64   `yaml:"ease_factor_start"`
	EaseFactorFloor        float64   `yaml:"ease_factor_floor"`
	EaseFactorCeiling      float64   `yaml:"ease_factor_ceiling"`
	LapsePenalty           float64   `yaml:"lapse_penalty"`
	GraduatingIntervalDays float64   `yaml:"graduating_interval_days"`
	LearningStepsMinutes   []float64 `yaml:"learning_steps_minutes"`
}

// DefaultConfig returns the standard scheduling constants.
func DefaultConfig() Config {
	return Config{
		EaseFactorStart:        2.5,
		EaseFactorFloor:        1.3,
		EaseFactorCeiling:      2.7,
		LapsePenalty:           -0.20,
		GraduatingIntervalDays: 1,
		LearningStepsMinutes:   []float64{10, 1440},
	}
}

var ErrInvalidConfig = errors.New("srs: invalid config")

// Validate checks that the constants describe a usable scheduler.
func (c Config) Validate() error {
	if c.EaseFactorFloor <= 0 {
		return fmt.Errorf("%w: ease factor floor must be positive, got %v", ErrInvalidConfig, c.EaseFactorFloor)
	}
	if c.EaseFactorFloor > c.EaseFactorCeiling {
		return fmt.Errorf("%w: ease factor floor %v above ceiling %v", ErrInvalidConfig, c.EaseFactorFloor, c.EaseFactorCeiling)
	}
	if c.EaseFactorStart < c.EaseFactorFloor || c.EaseFactorStart > c.EaseFactorCeiling {
		return fmt.Errorf("%w: ease factor start %v outside [%v, %v]", ErrInvalidConfig, c.EaseFactorStart, c.EaseFactorFloor, c.EaseFactorCeiling)
	}
	if c.LapsePenalty > 0 {
		return fmt.Errorf("%w: lapse penalty must not be positive, got %v", ErrInvalidConfig, c.LapsePenalty)
	}
	if c.GraduatingIntervalDays <= 0 {
		return fmt.Errorf("%w: graduating interval must be positive, got %v", ErrInvalidConfig, c.GraduatingIntervalDays)
	}
	if len(c.LearningStepsMinutes) == 0 {
		return fmt.Errorf("%w: at least one learning step is required", ErrInvalidConfig)
	}
	for i, step := range c.LearningStepsMinutes {
		if step <= 0 {
			return fmt.Errorf("%w: learning step %d must be positive, got %v", ErrInvalidConfig, i, step)
		}
	}
	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys absent from
// the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scheduler config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scheduler config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
