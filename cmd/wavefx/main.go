// Command wavefx adds echo, reverb, or chorus effects to WAV files
// recursively, writing processed copies to a mirrored directory tree.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/wavefx/internal/batch"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	InputDir  string `arg:"" type:"existingdir" help:"Input directory containing WAV files (processed recursively)."`
	OutputDir string `arg:"" help:"Output directory for processed files (preserves relative structure)."`

	Effect        string  `short:"e" default:"echo" enum:"echo,reverb,chorus" help:"Effect type: echo, reverb, or chorus."`
	Wet           float64 `short:"w" default:"0.5" help:"Wet/dry mix (0.0 dry, 1.0 wet)."`
	DelayMs       float64 `short:"d" default:"250" help:"Base delay time in milliseconds."`
	DecayTimeS    float64 `short:"t" name:"decay-time-s" default:"1.0" help:"Decay time in seconds (RT60 approximation)."`
	ChorusRateHz  float64 `default:"0.8" help:"Chorus modulation rate in Hz (ignored for echo/reverb)."`
	ChorusDepthMs float64 `default:"20.0" help:"Chorus modulation depth in ms (ignored for echo/reverb)."`

	SampleRate int              `default:"16000" help:"Required source sample rate in Hz."`
	Jobs       int              `short:"j" default:"0" help:"Files processed concurrently (0 = one per CPU)."`
	Verbose    bool             `short:"v" help:"Enable debug logging."`
	Version    kong.VersionFlag `help:"Show version information."`
}

func main() {
	cli := &CLI{}

	kctx := kong.Parse(cli,
		kong.Name("wavefx"),
		kong.Description("Add echo, reverb, or chorus effects to WAV files recursively"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	kctx.FatalIfErrorf(run(cli))
}

func run(cli *CLI) error {
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &batch.Runner{
		InputDir:   cli.InputDir,
		OutputDir:  cli.OutputDir,
		SampleRate: cli.SampleRate,
		Jobs:       cli.Jobs,
		Params: batch.Params{
			Effect:     cli.Effect,
			Wet:        cli.Wet,
			DelayMs:    cli.DelayMs,
			DecayTimeS: cli.DecayTimeS,
			RateHz:     cli.ChorusRateHz,
			DepthMs:    cli.ChorusDepthMs,
		},
		Log: logger,
	}

	return runner.Run(ctx)
}
