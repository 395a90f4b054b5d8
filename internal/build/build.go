// Package build runs the hourly image pipeline: it decides which hours are
// missing from the output folder, then interpolates, renders, encodes and
// writes each of them.
package build

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/aellingwood/skygen/internal/config"
	raster "github.com/aellingwood/skygen/internal/image"
	"github.com/aellingwood/skygen/internal/observability"
	"github.com/aellingwood/skygen/internal/sky"
)

// HoursPerDay is the number of images a complete output folder holds.
const HoursPerDay = 24

// BuildOptions controls the behaviour of the generator.
type BuildOptions struct {
	// Force regenerates hours whose images already exist.
	Force bool
	// RunID tags every log line of a run. A random id is used when empty.
	RunID string

	Fs      afero.Fs
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// BuildResult describes what a run did.
type BuildResult struct {
	RunID     string
	Generated []int
	Skipped   []int
	Failed    map[int]error
	Duration  time.Duration
}

// Regenerated reports whether the run wrote at least one image.
func (r *BuildResult) Regenerated() bool {
	return len(r.Generated) > 0
}

// Builder coordinates the image pipeline for one configuration.
type Builder struct {
	config   *config.Config
	options  BuildOptions
	palette  *sky.Palette
	renderer *raster.Renderer
}

// NewBuilder creates a Builder. Nil dependencies in opts default to the OS
// file system, a no-op logger and fresh metrics. The label font is loaded
// once here; when it cannot be loaded the built-in face is used.
func NewBuilder(cfg *config.Config, opts BuildOptions) *Builder {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics()
	}

	face := raster.FaceOrDefault(opts.Fs, cfg.Font.Path, cfg.Font.Size, opts.Logger)
	renderer := raster.NewRenderer(raster.Options{
		Width:     cfg.Image.Width,
		Height:    cfg.Image.Height,
		FadeRatio: cfg.Image.FadeRatio,
	}, face)

	return &Builder{
		config:   cfg,
		options:  opts,
		palette:  sky.NewPalette(cfg.SkyColours),
		renderer: renderer,
	}
}

// Targets returns the output paths for hour, one per configured format.
func (b *Builder) Targets(hour int) []string {
	paths := make([]string, 0, len(b.config.Output.Formats))
	for _, f := range b.config.Output.Formats {
		paths = append(paths, filepath.Join(b.config.Output.Folder, raster.Filename(hour, f)))
	}
	return paths
}

// Build executes one generator run. The steps are:
//  1. Ensure the output folder exists (failure is logged, not fatal)
//  2. For every hour 0-23, skip it if all of its images exist
//  3. For each remaining hour: interpolate, render, encode and write
//  4. Record metrics and log a summary
//
// A failed write only marks its own hour as failed. An hour without a colour
// stops the run: the partial result is returned together with the
// *sky.LookupError.
func (b *Builder) Build() (*BuildResult, error) {
	start := time.Now()

	runID := b.options.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := b.options.Logger.With(zap.String("run_id", runID))
	result := &BuildResult{RunID: runID, Failed: make(map[int]error)}

	// Step 1: Output folder.
	folder := b.config.Output.Folder
	log.Info("ensuring output folder", zap.String("folder", folder))
	created, err := EnsureDir(b.options.Fs, folder)
	switch {
	case err != nil:
		log.Error("could not create output folder", zap.Error(err))
	case created:
		log.Info("output folder created", zap.String("folder", folder))
	default:
		log.Info("output folder already exists", zap.String("folder", folder))
	}

	// Step 2: Idempotence gate.
	var pending []int
	for hour := range HoursPerDay {
		targets := b.Targets(hour)
		log.Debug("image path", zap.Int("hour", hour), zap.Strings("paths", targets))
		if !b.options.Force && b.allExist(targets) {
			result.Skipped = append(result.Skipped, hour)
			b.options.Metrics.RecordImage(observability.OutcomeSkipped)
			continue
		}
		pending = append(pending, hour)
	}

	if len(pending) == 0 {
		log.Info("all images already exist, no regeneration needed")
		b.finish(log, result, start)
		return result, nil
	}
	log.Info("regenerating missing images", zap.Ints("hours", pending))

	// Step 3: Generate.
	for _, hour := range pending {
		err := b.generateHour(log, hour)
		var lookupErr *sky.LookupError
		switch {
		case errors.As(err, &lookupErr):
			log.Error("no colour for hour, stopping", zap.Int("hour", hour), zap.Error(err))
			b.options.Metrics.RecordImage(observability.OutcomeFailed)
			b.finish(log, result, start)
			return result, fmt.Errorf("interpolating hour %d: %w", hour, err)
		case err != nil:
			log.Error("error saving image", zap.Int("hour", hour), zap.Error(err))
			result.Failed[hour] = err
			b.options.Metrics.RecordImage(observability.OutcomeFailed)
		default:
			result.Generated = append(result.Generated, hour)
			b.options.Metrics.RecordImage(observability.OutcomeGenerated)
		}
	}

	// Step 4: Summary.
	if result.Regenerated() {
		log.Info("missing images regenerated",
			zap.Int("generated", len(result.Generated)),
			zap.Int("failed", len(result.Failed)),
		)
	} else {
		log.Warn("no images could be regenerated", zap.Int("failed", len(result.Failed)))
	}
	b.finish(log, result, start)
	return result, nil
}

// generateHour renders hour and writes it in every configured format.
func (b *Builder) generateHour(log *zap.Logger, hour int) error {
	colour, err := b.palette.Interpolate(hour)
	if err != nil {
		return err
	}

	img := b.renderer.Render(colour, b.config.Name)

	if ce := log.Check(zap.DebugLevel, "rendered"); ce != nil {
		bounds := img.Bounds()
		box := b.renderer.Measure(b.config.Name)
		ce.Write(
			zap.Int("hour", hour),
			zap.String("colour", colour.Hex()),
			zap.Ints("shape", []int{bounds.Dy(), bounds.Dx(), 3}),
			zap.Any("sample_pixel", img.NRGBAAt(0, 0)),
			zap.Int("text_width", box.Dx()),
			zap.Int("text_height", box.Dy()),
		)
	}

	for i, path := range b.Targets(hour) {
		format := b.config.Output.Formats[i]
		var buf bytes.Buffer
		if err := raster.Encode(&buf, img, format); err != nil {
			return &WriteError{Hour: hour, Path: path, Err: err}
		}
		if err := WriteFile(b.options.Fs, path, buf.Bytes()); err != nil {
			return &WriteError{Hour: hour, Path: path, Err: err}
		}
		log.Info("image saved", zap.Int("hour", hour), zap.String("path", path))
	}
	return nil
}

func (b *Builder) allExist(paths []string) bool {
	for _, p := range paths {
		if !Exists(b.options.Fs, p) {
			return false
		}
	}
	return true
}

// finish records run metrics, writes the metrics textfile if configured and
// logs the closing line.
func (b *Builder) finish(log *zap.Logger, result *BuildResult, start time.Time) {
	now := time.Now()
	result.Duration = now.Sub(start)
	b.options.Metrics.RecordRun(result.Duration, now)

	if path := b.config.Metrics.Textfile; path != "" {
		if err := b.options.Metrics.WriteTextfile(path); err != nil {
			log.Warn("could not write metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}

	size, _ := DirSize(b.options.Fs, b.config.Output.Folder)
	log.Info("generator completed",
		zap.Bool("regenerated", result.Regenerated()),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int64("output_bytes", size),
		zap.Duration("duration", result.Duration.Round(time.Millisecond)),
	)
}
