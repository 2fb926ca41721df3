package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Width != 200 || cfg.Height != 200 {
		t.Errorf("expected 200x200, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Model.Feed != 0.0545 || cfg.Model.Kill != 0.062 {
		t.Errorf("expected f=0.0545 k=0.062, got f=%f k=%f", cfg.Model.Feed, cfg.Model.Kill)
	}
	if cfg.Model.DiffusionA != 1.0 || cfg.Model.DiffusionB != 0.5 || cfg.Model.Dt != 1.0 {
		t.Error("unexpected default diffusion rates or dt")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("mitosis")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Feed != 0.0367 {
		t.Errorf("expected feed 0.0367, got %f", p.Feed)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if p := GetPreset("nonexistent"); p != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	if !sort.StringsAreSorted(presets) {
		t.Error("expected sorted preset names")
	}
	if GetPreset(DefaultPreset) == nil {
		t.Errorf("default preset %q missing", DefaultPreset)
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset("maze"); err != nil {
		t.Fatalf("apply preset: %v", err)
	}
	if cfg.Preset != "maze" || cfg.Model.Feed != 0.029 || cfg.Model.Kill != 0.057 {
		t.Errorf("unexpected model after preset: %+v", cfg.Model)
	}

	if err := cfg.ApplyPreset("nope"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny grid", func(c *Config) { c.Width = 2 }},
		{"zero dt", func(c *Config) { c.Model.Dt = 0 }},
		{"negative diffusion", func(c *Config) { c.Model.DiffusionB = -1 }},
		{"zero steps per frame", func(c *Config) { c.StepsPerFrame = 0 }},
		{"negative steps", func(c *Config) { c.Steps = -1 }},
		{"unknown palette", func(c *Config) { c.Palette = "plaid" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morphogen.yaml")

	cfg := DefaultConfig()
	cfg.Width = 64
	cfg.Palette = "ocean"
	cfg.Model.Feed = 0.03
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Width != 64 || loaded.Palette != "ocean" || loaded.Model.Feed != 0.03 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("width: 80\nmodel:\n  kill: 0.06\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Width != 80 || cfg.Height != DefaultHeight {
		t.Errorf("expected 80x%d, got %dx%d", DefaultHeight, cfg.Width, cfg.Height)
	}
	if cfg.Model.Kill != 0.06 || cfg.Model.Feed != 0.0545 {
		t.Errorf("expected kill override with default feed, got %+v", cfg.Model)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 30, 20
	cfg.Seed = 4
	cfg.Model.Feed = 0.02

	e := cfg.NewEngine()
	if e.Width() != 30 || e.Height() != 20 {
		t.Errorf("expected 30x20 engine, got %dx%d", e.Width(), e.Height())
	}
	if e.Parameters().Feed != 0.02 {
		t.Errorf("expected feed 0.02, got %f", e.Parameters().Feed)
	}
}
