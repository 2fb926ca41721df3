package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/morphogen/internal/grayscott"
	"github.com/san-kum/morphogen/internal/palette"
)

const (
	DefaultWidth         = 200
	DefaultHeight        = 200
	DefaultStepsPerFrame = 8
	DefaultBrushRadius   = 10.0
	DefaultSteps         = 1000
	DefaultRecordEvery   = 50
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Width         int         `yaml:"width"`
	Height        int         `yaml:"height"`
	Preset        string      `yaml:"preset"`
	Palette       string      `yaml:"palette"`
	Seed          int64       `yaml:"seed"`
	Steps         int         `yaml:"steps"`
	StepsPerFrame int         `yaml:"steps_per_frame"`
	RecordEvery   int         `yaml:"record_every"`
	Brush         BrushConfig `yaml:"brush"`
	Model         ModelConfig `yaml:"model"`
}

type ModelConfig struct {
	Feed       float64 `yaml:"feed"`
	Kill       float64 `yaml:"kill"`
	DiffusionA float64 `yaml:"diffusion_a"`
	DiffusionB float64 `yaml:"diffusion_b"`
	Dt         float64 `yaml:"dt"`
}

type BrushConfig struct {
	Radius float64 `yaml:"radius"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Preset:        DefaultPreset,
		Palette:       palette.DefaultName,
		Steps:         DefaultSteps,
		StepsPerFrame: DefaultStepsPerFrame,
		RecordEvery:   DefaultRecordEvery,
		Brush:         BrushConfig{Radius: DefaultBrushRadius},
		Model: ModelConfig{
			Feed:       grayscott.DefaultFeed,
			Kill:       grayscott.DefaultKill,
			DiffusionA: grayscott.DefaultDiffusionA,
			DiffusionB: grayscott.DefaultDiffusionB,
			Dt:         grayscott.DefaultDt,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values the engine cannot absorb on its own. Feed and
// kill are left alone; the per-step clamp keeps any pair renderable.
func (c *Config) Validate() error {
	if c.Width < 3 || c.Height < 3 {
		return fmt.Errorf("%w: grid %dx%d is smaller than 3x3", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Model.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Model.Dt)
	}
	if c.Model.DiffusionA < 0 || c.Model.DiffusionB < 0 {
		return fmt.Errorf("%w: diffusion rates must not be negative", ErrInvalidConfig)
	}
	if c.StepsPerFrame < 1 {
		return fmt.Errorf("%w: steps_per_frame must be at least 1, got %d", ErrInvalidConfig, c.StepsPerFrame)
	}
	if c.Steps < 0 || c.RecordEvery < 0 {
		return fmt.Errorf("%w: steps and record_every must not be negative", ErrInvalidConfig)
	}
	if _, ok := palette.Named(c.Palette); !ok {
		return fmt.Errorf("%w: unknown palette %q (available: %v)", ErrInvalidConfig, c.Palette, palette.Names())
	}
	return nil
}

// ApplyPreset copies a named preset's feed and kill into the config.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: unknown preset %q (available: %v)", ErrInvalidConfig, name, ListPresets())
	}
	c.Preset = name
	c.Model.Feed = p.Feed
	c.Model.Kill = p.Kill
	return nil
}

func (c *Config) Params() grayscott.Params {
	return grayscott.Params{
		Feed:       c.Model.Feed,
		Kill:       c.Model.Kill,
		DiffusionA: c.Model.DiffusionA,
		DiffusionB: c.Model.DiffusionB,
		Dt:         c.Model.Dt,
	}
}

// NewEngine builds an engine from the config. A zero Seed leaves Randomize
// time-seeded.
func (c *Config) NewEngine() *grayscott.Engine {
	var opts []grayscott.Option
	if c.Seed != 0 {
		opts = append(opts, grayscott.WithSeed(c.Seed))
	}
	return grayscott.NewEngine(c.Width, c.Height, c.Params(), opts...)
}
