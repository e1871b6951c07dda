// Package main is the entry point for the headless animation simulator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/assets"
	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/engine/anim"
	"github.com/Faultbox/midgard-anim/internal/game"
	"github.com/Faultbox/midgard-anim/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// A positional argument overrides the configured rig
	if args := config.Args(); len(args) > 0 {
		cfg.Data.Rig = args[0]
	}
	if cfg.Data.Rig == "" {
		fmt.Fprintln(os.Stderr, "Usage: animsim [flags] <rig.yaml>")
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Animation Simulator ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	mgr := assets.NewManager(cfg.Data.AssetDirs...)
	defer mgr.Close()

	model, err := mgr.LoadRig(cfg.Data.Rig)
	if err != nil {
		return fmt.Errorf("loading rig: %w", err)
	}

	var script *game.Script
	if cfg.Simulation.Script != "" {
		path, err := mgr.Resolve(cfg.Simulation.Script)
		if err != nil {
			return fmt.Errorf("finding script: %w", err)
		}
		if script, err = game.LoadScript(path); err != nil {
			return fmt.Errorf("loading script: %w", err)
		}
	}

	sim := game.New(model, script, game.Options{
		FPS:               cfg.Simulation.FPS,
		Duration:          cfg.Simulation.Duration,
		Realtime:          cfg.Simulation.Realtime,
		DefaultTransition: cfg.Animation.DefaultTransition,
		Animation: anim.Config{
			AllowSameAnimation: cfg.Animation.AllowSameAnimation,
			PoolWarmup:         cfg.Animation.PoolWarmup,
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := sim.Run(ctx)
	printSummary(model.Name, sum)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func printSummary(name string, sum game.Summary) {
	fmt.Printf("Rig:       %s\n", name)
	fmt.Printf("Frames:    %d\n", sum.Frames)
	fmt.Printf("Simulated: %v\n", sum.Simulated)
	fmt.Printf("Cues:      %d\n", sum.CuesFired)
	fmt.Printf("Loops:     %d\n", sum.Loops)
	fmt.Printf("Ends:      %d\n", sum.Ends)
	if sum.Current != "" {
		fmt.Printf("Playing:   %s\n", sum.Current)
	}
	fmt.Println()
	fmt.Println("Final pose:")
	for _, p := range sum.Pose {
		fmt.Printf("  %-20s %8.3f %8.3f %8.3f\n", p.ID, p.Position.X, p.Position.Y, p.Position.Z)
	}
}
