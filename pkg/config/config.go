// Package config loads topoview settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/topoview/topoview.toml unless a path
// is given explicitly. Every field is optional; missing fields keep the
// values from [Default].
//
//	[layout]
//	charge = -150.0
//	max_ticks = 600
//
//	[sizing]
//	container_width = 1280
//
//	[selection]
//	dimmed_opacity = 0.15
//
//	[server]
//	addr = ":9090"
//	fps = 30
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/selection"
	"github.com/matzehuels/topoview/pkg/sizing"
)

const (
	appName  = "topoview"
	fileName = "topoview.toml"
)

// Config holds topoview configuration.
type Config struct {
	Layout    LayoutConfig    `toml:"layout"`
	Sizing    SizingConfig    `toml:"sizing"`
	Selection SelectionConfig `toml:"selection"`
	Server    ServerConfig    `toml:"server"`
}

// LayoutConfig holds simulation parameters. Zero values keep the layout
// package defaults.
type LayoutConfig struct {
	Charge           float64 `toml:"charge"`
	Gravity          float64 `toml:"gravity"`
	VelocityDecay    float64 `toml:"velocity_decay"`
	AlphaMin         float64 `toml:"alpha_min"`
	AlphaRestart     float64 `toml:"alpha_restart"`
	ConvergenceDelta float64 `toml:"convergence_delta"`
	CollideStrength  float64 `toml:"collide_strength"`
	ClusterStrength  float64 `toml:"cluster_strength"`
	MaxTicks         int     `toml:"max_ticks"` // Upper bound for batch renders
}

// SizingConfig describes the container batch renders draw into.
type SizingConfig struct {
	ContainerWidth  float64 `toml:"container_width"`
	ContainerHeight float64 `toml:"container_height"`
}

// SelectionConfig controls emphasis.
type SelectionConfig struct {
	DimmedOpacity float64 `toml:"dimmed_opacity"`
}

// ServerConfig controls `topoview serve`.
type ServerConfig struct {
	Addr  string `toml:"addr"`
	FPS   int    `toml:"fps"`
	Watch bool   `toml:"watch"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Charge:           layout.DefaultCharge,
			Gravity:          layout.DefaultGravity,
			VelocityDecay:    layout.DefaultVelocityDecay,
			AlphaMin:         layout.DefaultAlphaMin,
			AlphaRestart:     layout.DefaultAlphaRestart,
			ConvergenceDelta: layout.DefaultConvergenceDelta,
			CollideStrength:  layout.DefaultCollideStrength,
			ClusterStrength:  layout.DefaultClusterStrength,
			MaxTicks:         1000,
		},
		Sizing: SizingConfig{
			ContainerWidth:  sizing.FallbackWidth,
			ContainerHeight: sizing.DefaultHeight,
		},
		Selection: SelectionConfig{DimmedOpacity: selection.DimmedOpacity},
		Server:    ServerConfig{Addr: ":8080", FPS: 60},
	}
}

// Dir returns the config directory using the XDG standard
// (~/.config/topoview/).
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads the config file at path over the defaults. An empty path reads
// the default location, where a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks ranges that the zero-means-default rule cannot repair.
func (c *Config) Validate() error {
	if err := errors.ValidateOpacity(c.Selection.DimmedOpacity); err != nil {
		return err
	}
	if c.Layout.MaxTicks <= 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "max_ticks must be positive, got %d", c.Layout.MaxTicks)
	}
	if c.Layout.CollideStrength < 0 || c.Layout.CollideStrength > 1 {
		return errors.New(errors.ErrCodeInvalidSettings, "collide_strength must be in [0, 1], got %v", c.Layout.CollideStrength)
	}
	if c.Server.FPS <= 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "fps must be positive, got %d", c.Server.FPS)
	}
	return nil
}

// LayoutConfig returns the simulation parameters.
func (c *Config) LayoutConfig() layout.Config {
	l := c.Layout
	return layout.Config{
		Charge:           l.Charge,
		Gravity:          l.Gravity,
		VelocityDecay:    l.VelocityDecay,
		AlphaMin:         l.AlphaMin,
		AlphaRestart:     l.AlphaRestart,
		ConvergenceDelta: l.ConvergenceDelta,
		CollideStrength:  l.CollideStrength,
		ClusterStrength:  l.ClusterStrength,
	}
}
