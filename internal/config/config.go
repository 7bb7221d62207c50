// Package config handles meshkit configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/encoding"
	"github.com/Faultbox/meshkit/pkg/geometry"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// FallbackNone disables the fallback primitive.
const FallbackNone = "none"

// Config holds all meshkit settings.
type Config struct {
	Logging    LoggingConfig   `yaml:"logging"`
	Primitives geometry.Params `yaml:"primitives"`
	Import     ImportConfig    `yaml:"import"`
	Scene      SceneConfig     `yaml:"scene"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ImportConfig controls how interchange files are read.
type ImportConfig struct {
	// TextEncoding names the charset of OBJ documents; empty means UTF-8.
	TextEncoding string `yaml:"text_encoding"`
	// Fallback is the primitive substituted for a mesh that fails to load,
	// or "none".
	Fallback string `yaml:"fallback"`
}

// SceneConfig holds scene defaults.
type SceneConfig struct {
	Background [4]float32 `yaml:"background,flow"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Primitives: geometry.DefaultParams(),
		Import: ImportConfig{
			TextEncoding: "",
			Fallback:     geometry.KindCube.String(),
		},
		Scene: SceneConfig{
			Background: [4]float32{0.08, 0.08, 0.1, 1},
		},
	}
}

// FallbackKind resolves Import.Fallback. ok is false when disabled.
func (c *Config) FallbackKind() (kind geometry.Kind, ok bool, err error) {
	name := strings.TrimSpace(c.Import.Fallback)
	if name == "" || strings.EqualFold(name, FallbackNone) {
		return 0, false, nil
	}
	kind, err = geometry.ParseKind(name)
	if err != nil {
		return 0, false, err
	}
	return kind, true, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if err := c.Primitives.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("primitives: %w", err))
	}
	if _, err := encoding.Lookup(c.Import.TextEncoding); err != nil {
		errs = append(errs, fmt.Errorf("import.text_encoding: %w", err))
	}
	if _, _, err := c.FallbackKind(); err != nil {
		errs = append(errs, fmt.Errorf("import.fallback: %w", err))
	}
	for i, v := range c.Scene.Background {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("scene.background[%d] = %g outside [0, 1]", i, v))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
