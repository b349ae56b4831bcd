// Package batch applies one effect to every WAV file under an input
// directory, writing results to a mirrored tree under an output
// directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/wavefx/dsp/effects"
	"github.com/cwbudde/wavefx/internal/wavio"
)

// ErrUnknownEffect is returned when Params.Effect names no registered
// effect. It is surfaced before any file is read or written.
var ErrUnknownEffect = errors.New("unknown effect")

// Params selects the effect and its settings for a batch run.
type Params struct {
	Effect     string
	Wet        float64
	DelayMs    float64
	DecayTimeS float64

	// Chorus only; ignored for echo and reverb.
	RateHz  float64
	DepthMs float64
}

// Runner processes a directory tree of WAV files with a fixed effect.
type Runner struct {
	InputDir   string
	OutputDir  string
	SampleRate int
	Params     Params

	// Jobs bounds the number of files processed concurrently.
	// Zero or negative means one worker per CPU.
	Jobs int

	Log *slog.Logger
}

type applyFunc func(input []float64, sampleRate float64) ([]float64, error)

// Effects lists the registered effect identifiers.
func Effects() []string {
	return []string{"echo", "reverb", "chorus"}
}

func newApplyFunc(p Params) (applyFunc, error) {
	switch p.Effect {
	case "echo":
		return func(input []float64, sampleRate float64) ([]float64, error) {
			return effects.ApplyDelay(input, sampleRate, p.Wet, p.DelayMs, p.DecayTimeS, false)
		}, nil
	case "reverb":
		return func(input []float64, sampleRate float64) ([]float64, error) {
			return effects.ApplyDelay(input, sampleRate, p.Wet, p.DelayMs, p.DecayTimeS, true)
		}, nil
	case "chorus":
		return func(input []float64, sampleRate float64) ([]float64, error) {
			return effects.ApplyChorus(input, sampleRate, p.Wet, p.DelayMs, p.DecayTimeS, p.RateHz, p.DepthMs)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)",
			ErrUnknownEffect, p.Effect, strings.Join(Effects(), ", "))
	}
}

// Run processes every .wav file under InputDir. The first failure aborts
// the whole batch; there is no skip policy.
func (r *Runner) Run(ctx context.Context) error {
	apply, err := newApplyFunc(r.Params)
	if err != nil {
		return err
	}

	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	files, err := r.collectFiles()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	jobs := r.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	log.Info("batch start",
		"effect", r.Params.Effect,
		"files", len(files),
		"jobs", jobs,
		"input", r.InputDir,
		"output", r.OutputDir,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, rel := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return r.processFile(rel, apply, log)
		})
	}

	return g.Wait()
}

func (r *Runner) collectFiles() ([]string, error) {
	var files []string

	visited := make(map[string]bool)

	if err := r.collectDir(r.InputDir, visited, &files); err != nil {
		return nil, fmt.Errorf("walk %s: %w", r.InputDir, err)
	}

	return files, nil
}

// collectDir gathers .wav files under dir in lexical order, descending
// into directory symlinks. Each resolved directory is visited once, so
// symlink cycles terminate.
func (r *Runner) collectDir(dir string, visited map[string]bool, files *[]string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}

	if visited[resolved] {
		return nil
	}

	visited[resolved] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			isDir = info.IsDir()
		}

		if isDir {
			if err := r.collectDir(path, visited, files); err != nil {
				return err
			}

			continue
		}

		if !strings.EqualFold(filepath.Ext(path), ".wav") {
			continue
		}

		rel, err := filepath.Rel(r.InputDir, path)
		if err != nil {
			return err
		}

		*files = append(*files, rel)
	}

	return nil
}

func (r *Runner) processFile(rel string, apply applyFunc, log *slog.Logger) error {
	start := time.Now()

	inPath := filepath.Join(r.InputDir, rel)
	outPath := filepath.Join(r.OutputDir, rel)

	input, err := wavio.DecodeMono16(inPath, r.SampleRate)
	if err != nil {
		return err
	}

	processed, err := apply(input, float64(r.SampleRate))
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir for %s: %w", rel, err)
	}

	if err := wavio.EncodeMono16(outPath, processed, r.SampleRate); err != nil {
		return err
	}

	peak := wavio.Peak(processed)

	log.Info("processed",
		"file", rel,
		"samples", len(input),
		"peak", peak,
		"clipped", peak > 1,
		"duration", time.Since(start),
	)

	return nil
}
