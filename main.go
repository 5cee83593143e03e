package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/pthm-cable/fieldsim/config"
	"github.com/pthm-cable/fieldsim/game"
	"github.com/pthm-cable/fieldsim/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logStats := flag.Bool("log-stats", false, "Output telemetry windows via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	mapPath := flag.String("map", "", "Obstacle map file (overrides config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, which defaults to time-based)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = use config)")

	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if *maxSteps > 0 {
		cfg.Run.MaxSteps = *maxSteps
	}
	if *mapPath != "" {
		cfg.Obstacles.Map = *mapPath
	}

	out, err := telemetry.NewOutputManager(*outputDir, uuid.NewString())
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	sim := game.New(cfg, game.Options{
		Output:   out,
		LogStats: *logStats,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := game.NewController(sim)
	served := make(chan error, 1)
	go func() { served <- ctrl.Serve(ctx) }()

	slog.Info("starting simulation",
		"run_id", sim.RunID(),
		"seed", cfg.Run.Seed,
		"max_steps", cfg.Run.MaxSteps,
		"output_dir", out.Dir(),
	)

	res, err := ctrl.Run(ctx, cfg.Run.MaxSteps)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "error", err)
	}

	perf := sim.Timing()
	slog.Info("simulation finished",
		"run_id", sim.RunID(),
		"steps", res.Steps,
		"season", res.Snapshot.Season.String(),
		"viable", res.Snapshot.Viable,
		"stopped", res.Stopped,
		"population", res.Snapshot.Summary.String(),
		"steps_per_sec", perf.StepsPerSecond,
	)

	stop()
	<-served
}
