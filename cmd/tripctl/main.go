package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/trip-refiner/internal/app"
	"github.com/example/trip-refiner/internal/cli"
	"github.com/example/trip-refiner/internal/config"
	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
)

var CLI struct {
	Config   string `help:"Path to config.yaml." type:"path" env:"TRIP_REFINER_CONFIG" default:"config.yaml"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn"`

	Refine     cli.RefineCmd     `cmd:"" help:"Refine a prompt for a task and plan the trip if it is one."`
	Plan       cli.PlanCmd       `cmd:"" help:"Create or refine a multi-turn trip plan."`
	Transcript cli.TranscriptCmd `cmd:"" help:"Inspect or clear the saved trip plan."`
	Key        cli.KeyCmd        `cmd:"" help:"Manage the Gemini API key."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tripctl"),
		kong.Description("Refine prompts and plan trips with Gemini."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{Level: CLI.LogLevel, Dir: cfg.Log.Dir, Stderr: true, Prefix: "tripctl"}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(sigCtx, cfg, metrics.New(prometheus.NewRegistry()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = ctx.Run(&cli.Context{Ctx: sigCtx, App: a})
	a.Close()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
