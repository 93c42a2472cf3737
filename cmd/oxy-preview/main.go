// Command oxy-preview renders a scene file with the software renderer and writes PNGs.
//
//	oxy-preview -config scene.yaml -out scene.png
//	oxy-preview -config scene.yaml -all-debug -out debug.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/config"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
	"github.com/Carmen-Shannon/oxy-shade/engine/software"
)

type preview struct {
	configPath string
	out        string
	mode       string
	debugMode  string
	allDebug   bool
	validate   bool
	verbose    bool
	quiet      bool
	workers    int
}

func (p *preview) parseFlags(args []string) error {
	fs := flag.NewFlagSet("oxy-preview", flag.ContinueOnError)
	fs.StringVar(&p.configPath, "config", "", "scene YAML file (default: built-in quad scene)")
	fs.StringVar(&p.out, "out", "preview.png", "output PNG path")
	fs.StringVar(&p.mode, "mode", "", "override the shading mode (color, textured, normal_mapped, material, debug)")
	fs.StringVar(&p.debugMode, "debug", "", "debug visualization read by dynamic debug variants, by name or number")
	fs.BoolVar(&p.allDebug, "all-debug", false, "render every debug visualization to <out>_<mode>.png")
	fs.BoolVar(&p.validate, "validate", true, "compile the variant's shaders through naga before rendering")
	fs.BoolVar(&p.verbose, "v", false, "verbose logging")
	fs.BoolVar(&p.quiet, "q", false, "hide progress bars")
	fs.IntVar(&p.workers, "workers", 0, "worker goroutines, 0 uses the scene setting or one per CPU")
	return fs.Parse(args)
}

func (p *preview) loadScene() (*config.Scene, error) {
	s := config.Default()
	if p.configPath != "" {
		var err error
		if s, err = config.Load(p.configPath); err != nil {
			return nil, err
		}
	}
	if p.mode != "" {
		m, err := shading.ParseMode(p.mode)
		if err != nil {
			return nil, err
		}
		s.Variant.Mode = m
	}
	if p.debugMode != "" {
		m, err := debug.ParseMode(p.debugMode)
		if err != nil {
			return nil, err
		}
		s.Debug = m
	}
	if p.allDebug {
		s.Variant.Mode = shading.ModeDebug
	}
	if p.workers > 0 {
		s.Workers = p.workers
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// validateShaders builds the pipelines of the variants without a device so WGSL
// errors surface before a long render.
func validateShaders(variants ...shading.Variant) error {
	lib := shader.Embedded()
	for _, v := range variants {
		if _, err := pipeline.ForVariant(lib, v); err != nil {
			common.Logger().Warn("preview: shader validation failed", "variant", v.Key(), "err", err)
			return err
		}
		common.Logger().Debug("preview: shaders valid", "variant", v.Key())
	}
	return nil
}

type job struct {
	variant shading.Variant
	path    string
}

func (p *preview) jobs(s *config.Scene) []job {
	v := s.BuildVariant()
	if !p.allDebug {
		return []job{{variant: v, path: p.out}}
	}
	ext := filepath.Ext(p.out)
	base := strings.TrimSuffix(p.out, ext)
	if ext == "" {
		ext = ".png"
	}
	out := make([]job, 0, debug.ModeCount)
	for m := range debug.Mode(debug.ModeCount) {
		out = append(out, job{variant: v.Specialize(m), path: fmt.Sprintf("%s_%s%s", base, m, ext)})
	}
	return out
}

// newRenderer returns the renderer shared by every job of a run. The band callback
// advances whichever progress bar *bar points at.
func (p *preview) newRenderer(s *config.Scene, prof *profiler.Profiler, bar **progressbar.ProgressBar) software.Renderer {
	options := []software.RendererOption{software.WithProfiler(prof)}
	if s.Workers > 0 {
		options = append(options, software.WithWorkers(s.Workers))
	}
	if !p.quiet {
		options = append(options, software.WithBandCallback(func(software.Band) {
			if b := *bar; b != nil {
				_ = b.Add(1)
			}
		}))
	}
	return software.NewRenderer(options...)
}

func (p *preview) render(ctx context.Context, r software.Renderer, s *config.Scene, res shading.Resources, j job, prof *profiler.Profiler, bar **progressbar.ProgressBar) error {
	fb, err := software.NewFramebuffer(s.Width, s.Height)
	if err != nil {
		return err
	}

	calls := []software.DrawCall{{Variant: j.variant, Mesh: s.BuildMesh(), Resources: res}}
	if s.Overlay {
		overlay := software.DrawCall{Variant: shading.NewVariant(shading.ModeOverlay), Resources: res}
		calls = append([]software.DrawCall{overlay}, calls...)
	}

	if !p.quiet {
		*bar = progressbar.Default(int64(len(calls)*r.BandCount(s.Height)), filepath.Base(j.path))
		defer func() {
			_ = (*bar).Close()
			*bar = nil
		}()
	}

	start := time.Now()
	frame := s.BuildFrame(s.Debug)
	for _, call := range calls {
		if err := r.Draw(ctx, fb, frame, call); err != nil {
			return fmt.Errorf("preview: %s: %w", j.variant.Key(), err)
		}
	}
	if err := fb.WritePNG(j.path); err != nil {
		return err
	}
	common.Logger().Info("preview: wrote image",
		"path", j.path,
		"variant", j.variant.Key(),
		"size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"elapsed", time.Since(start),
		"raster_mean", prof.Stage("raster").Mean(),
	)
	prof.Tick()
	return nil
}

func (p *preview) run(ctx context.Context) error {
	s, err := p.loadScene()
	if err != nil {
		return err
	}
	jobs := p.jobs(s)
	if p.validate {
		variants := make([]shading.Variant, 0, len(jobs)+1)
		for _, j := range jobs {
			variants = append(variants, j.variant)
		}
		if s.Overlay {
			variants = append(variants, shading.NewVariant(shading.ModeOverlay))
		}
		if err := validateShaders(variants...); err != nil {
			return err
		}
	}

	res, err := s.BuildResources(max(1, s.Workers))
	if err != nil {
		return err
	}
	prof := profiler.NewProfiler(profiler.WithInterval(0))
	var bar *progressbar.ProgressBar
	r := p.newRenderer(s, prof, &bar)
	defer r.Release()
	for _, j := range jobs {
		if err := p.render(ctx, r, s, res, j, prof, &bar); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	p := &preview{}
	if err := p.parseFlags(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	level := slog.LevelInfo
	if p.verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := p.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "oxy-preview: %v\n", err)
		stop()
		os.Exit(1)
	}
}
