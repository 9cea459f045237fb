package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Engine configuration, loaded from a YAML file merged over
 *		built-in defaults.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the subset of engine behavior an embedder typically
// wants to pin down from a config file rather than code: sample rate,
// default validation mode, the observer's rate cap, and the Level window
// size. NewEngineFromConfig applies SampleRate and ValidationMode only;
// ObserverRateHz and LevelWindowSize are loaded and merged but do not
// change the engine's observer.
type EngineConfig struct {
	SampleRate      float64 `yaml:"sample_rate"`
	ValidationMode  string  `yaml:"validation_mode"` // "warn" | "strict" | "none"
	ObserverRateHz  float64 `yaml:"observer_rate_hz"`
	LevelWindowSize int     `yaml:"level_window_size"`
}

// DefaultEngineConfig returns the engine's built-in defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate:      44100,
		ValidationMode:  "warn",
		ObserverRateHz:  defaultRateHz,
		LevelWindowSize: defaultLevelWindow,
	}
}

// ParseValidationMode maps a config string to a ValidationMode.
func ParseValidationMode(s string) (ValidationMode, error) {
	switch s {
	case "", "warn":
		return ValidationWarn, nil
	case "strict":
		return ValidationStrict, nil
	case "none":
		return ValidationNone, nil
	default:
		return ValidationWarn, fmt.Errorf("corerack: unknown validation mode %q", s)
	}
}

// LoadEngineConfig reads an EngineConfig from a YAML file, filling in
// DefaultEngineConfig for any field the file omits.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("corerack: reading config %s: %w", path, err)
	}
	// Decode onto a zero-valued struct first so we can tell which fields
	// the file actually set, then merge those over the defaults.
	var fromFile EngineConfig
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return cfg, fmt.Errorf("corerack: parsing config %s: %w", path, err)
	}
	if fromFile.SampleRate != 0 {
		cfg.SampleRate = fromFile.SampleRate
	}
	if fromFile.ValidationMode != "" {
		cfg.ValidationMode = fromFile.ValidationMode
	}
	if fromFile.ObserverRateHz != 0 {
		cfg.ObserverRateHz = fromFile.ObserverRateHz
	}
	if fromFile.LevelWindowSize != 0 {
		cfg.LevelWindowSize = fromFile.LevelWindowSize
	}
	return cfg, nil
}
