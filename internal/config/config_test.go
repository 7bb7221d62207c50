package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/meshkit/pkg/geometry"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if cfg.Primitives != geometry.DefaultParams() {
		t.Errorf("expected default primitive params, got %+v", cfg.Primitives)
	}
	if cfg.Import.Fallback != "cube" {
		t.Errorf("expected fallback 'cube', got %s", cfg.Import.Fallback)
	}
	if cfg.Scene.Background != [4]float32{0.08, 0.08, 0.1, 1} {
		t.Errorf("unexpected background %v", cfg.Scene.Background)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
logging:
  level: "debug"
  log_file: "meshkit.log"

primitives:
  sphere:
    radius: 2
    latitude_bands: 8
  prism:
    segments: 6

import:
  text_encoding: "windows-1252"
  fallback: "sphere"

scene:
  background: [0, 0, 0, 1]
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshkit.log" {
		t.Errorf("expected log file 'meshkit.log', got %s", cfg.Logging.LogFile)
	}

	if cfg.Primitives.Sphere.Radius != 2 || cfg.Primitives.Sphere.LatitudeBands != 8 {
		t.Errorf("sphere not loaded: %+v", cfg.Primitives.Sphere)
	}
	// keys missing from the file keep their defaults
	if cfg.Primitives.Sphere.LongitudeBands != geometry.DefaultSphereConfig().LongitudeBands {
		t.Errorf("expected default longitude bands, got %d", cfg.Primitives.Sphere.LongitudeBands)
	}
	if cfg.Primitives.Cube != geometry.DefaultCubeConfig() {
		t.Errorf("expected default cube, got %+v", cfg.Primitives.Cube)
	}
	if cfg.Primitives.Prism.Segments != 6 {
		t.Errorf("expected 6 prism segments, got %d", cfg.Primitives.Prism.Segments)
	}

	if cfg.Import.TextEncoding != "windows-1252" {
		t.Errorf("expected text encoding windows-1252, got %s", cfg.Import.TextEncoding)
	}
	kind, ok, err := cfg.FallbackKind()
	if err != nil || !ok || kind != geometry.KindSphere {
		t.Errorf("FallbackKind = %v, %v, %v", kind, ok, err)
	}
	if cfg.Scene.Background != [4]float32{0, 0, 0, 1} {
		t.Errorf("unexpected background %v", cfg.Scene.Background)
	}
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(configPath, []byte("primitives:\n  cube:\n    sise: 2\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFile(configPath); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Import.Fallback != "cube" {
		t.Errorf("expected defaults, got fallback %s", cfg.Import.Fallback)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/meshkit.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"sphere radius", func(c *Config) { c.Primitives.Sphere.Radius = 0 }},
		{"prism segments", func(c *Config) { c.Primitives.Prism.Segments = 2 }},
		{"charset", func(c *Config) { c.Import.TextEncoding = "klingon" }},
		{"fallback", func(c *Config) { c.Import.Fallback = "teapot" }},
		{"background", func(c *Config) { c.Scene.Background[3] = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestFallbackNone(t *testing.T) {
	for _, v := range []string{"none", "NONE", ""} {
		cfg := Default()
		cfg.Import.Fallback = v
		if _, ok, err := cfg.FallbackKind(); ok || err != nil {
			t.Errorf("fallback %q: ok = %v, err = %v", v, ok, err)
		}
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", FileName)

	cfg := Default()
	cfg.Primitives.Cylinder.RadialSegments = 12
	cfg.Import.Fallback = "prism"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}

	if loaded.Primitives.Cylinder.RadialSegments != 12 {
		t.Errorf("expected 12 radial segments, got %d", loaded.Primitives.Cylinder.RadialSegments)
	}
	if loaded.Import.Fallback != "prism" {
		t.Errorf("expected fallback prism, got %s", loaded.Import.Fallback)
	}
	if loaded.Scene.Background != cfg.Scene.Background {
		t.Errorf("background = %v, want %v", loaded.Scene.Background, cfg.Scene.Background)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("config dir should not be empty")
	}
}
