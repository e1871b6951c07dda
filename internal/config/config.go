// Package config handles simulator configuration loading and management.
package config

import "time"

// Config holds all runtime settings.
type Config struct {
	Animation  AnimationConfig  `yaml:"animation"`
	Simulation SimulationConfig `yaml:"simulation"`
	Data       DataConfig       `yaml:"data"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AnimationConfig holds controller settings.
type AnimationConfig struct {
	AllowSameAnimation bool    `yaml:"allow_same_animation"`
	DefaultTransition  float32 `yaml:"default_transition"` // Crossfade seconds when a cue gives none
	PoolWarmup         int     `yaml:"pool_warmup"`
}

// SimulationConfig holds frame loop settings.
type SimulationConfig struct {
	FPS      int           `yaml:"fps"`
	Duration time.Duration `yaml:"duration"`
	Script   string        `yaml:"script"`   // Path to a cue script
	Realtime bool          `yaml:"realtime"` // Sleep between frames
}

// DataConfig holds asset locations.
type DataConfig struct {
	AssetDirs []string `yaml:"asset_dirs"` // Directories searched for rigs and scripts
	Rig       string   `yaml:"rig"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Animation: AnimationConfig{
			AllowSameAnimation: false,
			DefaultTransition:  0.2,
			PoolWarmup:         32,
		},
		Simulation: SimulationConfig{
			FPS:      60,
			Duration: 5 * time.Second,
			Realtime: false,
		},
		Data: DataConfig{
			AssetDirs: []string{"."},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// FrameDelta returns the fixed time step in seconds.
func (s SimulationConfig) FrameDelta() float32 {
	if s.FPS <= 0 {
		return 1.0 / 60
	}
	return 1 / float32(s.FPS)
}
