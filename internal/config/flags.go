package config

import (
	"flag"
	"time"
)

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagRig      = flag.String("rig", "", "Rig file to simulate")
	flagScript   = flag.String("script", "", "Cue script to play")
	flagFPS      = flag.Int("fps", 0, "Simulation frame rate")
	flagDuration = flag.Duration("duration", 0, "Simulated time")
	flagRealtime = flag.Bool("realtime", false, "Pace frames in real time")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRig != "" {
		cfg.Data.Rig = *flagRig
	}
	if *flagScript != "" {
		cfg.Simulation.Script = *flagScript
	}
	if *flagFPS > 0 {
		cfg.Simulation.FPS = *flagFPS
	}
	if *flagDuration > time.Duration(0) {
		cfg.Simulation.Duration = *flagDuration
	}
	if *flagRealtime {
		cfg.Simulation.Realtime = true
	}
}
