package pipeline

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/bannerlord/bannerlord/pkg/banner"
	"github.com/bannerlord/bannerlord/pkg/cache"
	"github.com/bannerlord/bannerlord/pkg/design"
	"github.com/bannerlord/bannerlord/pkg/errors"
	"github.com/bannerlord/bannerlord/pkg/generate"
	"github.com/bannerlord/bannerlord/pkg/layout"
	"github.com/bannerlord/bannerlord/pkg/observability"
	"github.com/bannerlord/bannerlord/pkg/render"
	"github.com/bannerlord/bannerlord/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating orchestration logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Advisor    design.Advisor
	Generator  generate.Generator
	Compositor *render.Compositor
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
}

// NewRunner creates a runner with the given collaborators.
// A nil advisor skips the advise stage and uses default guidance.
// A nil generator forces the gradient background.
// A nil cache disables advisor response caching.
func NewRunner(advisor design.Advisor, generator generate.Generator, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Advisor:    advisor,
		Generator:  generator,
		Compositor: render.NewCompositor(nil),
		Cache:      c,
		Keyer:      cache.NewDefaultKeyer(),
		Logger:     logger,
	}
}

// Execute runs the complete advise → plan → generate → compose → export
// pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Advise
	adviseStart := time.Now()
	guidance, adviseHit, err := r.AdviseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Guidance = guidance
	result.Stats.AdviseTime = time.Since(adviseStart)
	result.CacheInfo.AdviseHit = adviseHit

	opts.Logger.Info("design guidance ready",
		"concept", guidance.Concept,
		"cached", adviseHit,
		"duration", result.Stats.AdviseTime)

	// Stage 2: Plan
	style := layout.Style(opts.Style)
	if opts.Style == "" {
		style = DefaultStyle
	}
	pos := opts.ResolvePosition(guidance)
	observability.Pipeline().OnPlanStart(ctx, string(style), string(pos))
	regions, err := layout.Plan(opts.Width, opts.Height, style, pos)
	observability.Pipeline().OnPlanComplete(ctx, string(style), string(pos), len(regions), err)
	if err != nil {
		return nil, err
	}
	result.Regions = regions

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", opts.OutputDir)
	}
	base := filepath.Join(opts.OutputDir, opts.OutputName)

	// The guidance sketch is both a generator input and an artifact.
	control := layout.ControlImage(opts.Width, opts.Height, regions)
	result.ControlPath = base + "_control.png"
	if err := sink.WritePNG(control, result.ControlPath); err != nil {
		return nil, err
	}

	// Stage 3: Generate
	generateStart := time.Now()
	background := r.generateBackground(ctx, opts, guidance, control)
	result.Stats.GenerateTime = time.Since(generateStart)

	opts.Logger.Info("background ready", "duration", result.Stats.GenerateTime)

	// Stage 4: Compose
	composeStart := time.Now()
	var layers []banner.TextElement
	if opts.Text != "" {
		layers = append(layers, banner.TextElement{
			Text:     opts.Text,
			FontSize: opts.FontSize,
			Color:    opts.ResolveColor(guidance),
			Shadow:   true,
		})
	}

	observability.Pipeline().OnComposeStart(ctx, len(layers))
	var region *layout.Region
	if area, ok := layout.TextAreaOf(regions); ok {
		region = &area
	}
	final, err := r.Compositor.ComposeIn(background, layers, region)
	observability.Pipeline().OnComposeComplete(ctx, len(layers), time.Since(composeStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.ComposeTime = time.Since(composeStart)

	// Stage 5: Export
	if err := r.export(result, base, final, background, layers, opts); err != nil {
		observability.Pipeline().OnExportComplete(ctx, nil, err)
		return nil, err
	}
	observability.Pipeline().OnExportComplete(ctx, result.Paths(), nil)

	opts.Logger.Info("banner exported",
		"png", result.PNGPath,
		"svg", result.SVGPath,
		"metadata", result.MetadataPath)

	return result, nil
}

// AdviseWithCacheInfo asks the advisor for guidance, with caching, and
// reports whether the response came from cache.
//
// Advisor failures are advisory: the runner logs them and falls back to
// the fixed default guidance rather than failing the banner.
func (r *Runner) AdviseWithCacheInfo(ctx context.Context, opts Options) (design.Guidance, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return design.Guidance{}, false, err
	}
	r.applyLogger(&opts)

	if r.Advisor == nil {
		return design.DefaultGuidance(""), false, nil
	}

	cacheKey := r.Keyer.Key("advise", opts.Prompt)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "advise")
			return design.ParseResponse(string(data)), true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "advise")
	}

	observability.Pipeline().OnAdviseStart(ctx, opts.Prompt)
	start := time.Now()
	raw, err := r.Advisor.Design(ctx, opts.Prompt)
	observability.Pipeline().OnAdviseComplete(ctx, opts.Prompt, time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return design.Guidance{}, false, ctx.Err()
		}
		opts.Logger.Warn("design advisor unavailable, using default guidance", "err", err)
		return design.DefaultGuidance(""), false, nil
	}

	_ = r.Cache.Set(ctx, cacheKey, []byte(raw), cache.TTLAdvice)
	observability.Cache().OnCacheSet(ctx, "advise", len(raw))

	return design.ParseResponse(raw), false, nil
}

// Advise is a convenience wrapper that discards the cache hit info.
func (r *Runner) Advise(ctx context.Context, opts Options) (design.Guidance, error) {
	g, _, err := r.AdviseWithCacheInfo(ctx, opts)
	return g, err
}

// Refine asks the advisor to revise a previous design given feedback.
// Refinements are never cached: feedback makes every request unique.
func (r *Runner) Refine(ctx context.Context, originalPrompt, feedback string) (design.Guidance, error) {
	if r.Advisor == nil {
		return design.DefaultGuidance(""), nil
	}
	raw, err := r.Advisor.Refine(ctx, originalPrompt, feedback)
	if err != nil {
		if ctx.Err() != nil {
			return design.Guidance{}, ctx.Err()
		}
		r.Logger.Warn("design advisor unavailable, using default guidance", "err", err)
		return design.DefaultGuidance(""), nil
	}
	return design.ParseResponse(raw), nil
}

// generateBackground produces the banner background. The diffusion
// generator is only consulted when requested and available; any failure
// degrades to the deterministic gradient so banner creation never blocks
// on the generation service.
func (r *Runner) generateBackground(ctx context.Context, opts Options, g design.Guidance, control image.Image) image.Image {
	backend := "gradient"
	if opts.UseGenerator && r.Generator != nil {
		backend = "generator"
	}
	observability.Pipeline().OnGenerateStart(ctx, backend)

	if backend == "generator" {
		prompt := g.ImagePrompt
		if prompt == "" {
			prompt = opts.Prompt
		}
		start := time.Now()
		img, err := r.Generator.Generate(ctx, prompt, control)
		observability.Pipeline().OnGenerateComplete(ctx, backend, time.Since(start), err)
		if err == nil {
			return fitCanvas(img, opts.Width, opts.Height)
		}
		opts.Logger.Warn("background generation failed, using gradient", "err", err)
	} else {
		observability.Pipeline().OnGenerateComplete(ctx, backend, 0, nil)
	}

	return generate.GradientBackground(opts.Width, opts.Height)
}

// fitCanvas crops and scales img to exactly width x height. Generators
// are free to return other dimensions; the banner canvas is not.
func fitCanvas(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return img
	}
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}

// export writes the composed banner, the vector rendition, and the
// metadata pair under base.
func (r *Runner) export(result *Result, base string, final, background image.Image, layers []banner.TextElement, opts Options) error {
	result.PNGPath = base + ".png"
	if err := sink.WritePNG(final, result.PNGPath); err != nil {
		return err
	}

	bgPath, metaPath, err := sink.ExportMetadata(base, background, layers)
	if err != nil {
		return err
	}
	result.BackgroundPath = bgPath
	result.MetadataPath = metaPath

	result.SVGPath = base + ".svg"
	doc := banner.Document{
		Width:      opts.Width,
		Height:     opts.Height,
		Background: filepath.Base(bgPath),
		Layers:     layers,
	}
	return sink.WriteSVG(doc, result.SVGPath)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
