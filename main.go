package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheggaaa/pb"

	"github.com/pthm-cable/chemotaxis/config"
	"github.com/pthm-cable/chemotaxis/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml or config.toml (empty = use defaults)")
	layoutPath := flag.String("layout", "", "CSV file of particle placements (kind,x,y,intensity,response_rate)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 1000, "Stop after N ticks (0 = until interrupted)")
	outputDir := flag.String("output-dir", "", "Output directory for the positions trace and config copy")
	logStats := flag.Bool("log-stats", false, "Output window and perf stats via slog")
	workers := flag.Int("workers", 0, "Worker goroutines per phase (0 = use config, -1 = all CPUs)")
	progress := flag.Bool("progress", false, "Show a progress bar on stderr (needs -max-ticks)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var layout []config.Placement
	if *layoutPath != "" {
		var err error
		layout, err = config.LoadLayout(*layoutPath)
		if err != nil {
			slog.Error("failed to load layout", "error", err)
			os.Exit(1)
		}
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.New(game.Options{
		Config:    config.Cfg(),
		Seed:      rngSeed,
		Layout:    layout,
		Workers:   *workers,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Logger:    logger,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var bar *pb.ProgressBar
	if *progress && *maxTicks > 0 {
		bar = pb.New(*maxTicks)
		bar.Output = os.Stderr
		bar.SetWidth(80)
		bar.Start()
	}

	slog.Info("starting simulation",
		"run", g.RunID(),
		"seed", rngSeed,
		"max_ticks", *maxTicks,
	)

	start := time.Now()
	stopped := false
	for !stopped {
		g.Step()
		if bar != nil {
			bar.Increment()
		}

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			stopped = true
		}

		select {
		case <-interrupt:
			slog.Info("interrupted", "tick", g.Tick())
			stopped = true
		default:
		}
	}

	if bar != nil {
		bar.Finish()
	}

	if err := g.Close(); err != nil {
		slog.Error("failed to close simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("simulation finished",
		"run", g.RunID(),
		"ticks", g.Tick(),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
}
