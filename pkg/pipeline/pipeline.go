// Package pipeline provides the core banner creation pipeline.
//
// This package implements the complete advise → plan → generate → compose
// → export flow that can be used by CLI and API components. By centralizing
// this logic, we ensure consistent behavior across all entry points.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Advise: Ask the design advisor for guidance (colors, layout, prompt)
//  2. Plan: Compute the layout regions and guidance sketch
//  3. Generate: Produce the background (diffusion service or gradient)
//  4. Compose: Layer the text over the background
//  5. Export: Write PNG, SVG, and metadata artifacts
//
// Advisor failures never block a banner: parsing degrades to a fixed
// default guidance, and the gradient backend needs no network at all.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(advisor, generator, cache, logger)
//	opts := pipeline.Options{
//	    Prompt: "tech conference banner",
//	    Text:   "GopherCon 2026",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.PNGPath)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bannerlord/bannerlord/pkg/design"
	"github.com/bannerlord/bannerlord/pkg/errors"
	"github.com/bannerlord/bannerlord/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default banner width in pixels.
	DefaultWidth = 1024

	// DefaultHeight is the default banner height in pixels.
	DefaultHeight = 512

	// DefaultFontSize is the default text size in points.
	DefaultFontSize = 72.0

	// DefaultColor is the default text color when neither the caller nor
	// the advisor picks one.
	DefaultColor = "#FFFFFF"

	// DefaultOutputName is the artifact base name.
	DefaultOutputName = "banner"

	// DefaultOutputDir is where artifacts are written.
	DefaultOutputDir = "outputs"
)

// DefaultStyle is the default guidance geometry.
const DefaultStyle = layout.StyleMinimal

// ValidStyles is the set of supported layout styles.
var ValidStyles = map[layout.Style]bool{
	layout.StyleMinimal:   true,
	layout.StyleGeometric: true,
	layout.StyleSplit:     true,
}

// ValidPositions is the set of supported text positions.
var ValidPositions = map[layout.Position]bool{
	layout.PositionCenter: true,
	layout.PositionLeft:   true,
	layout.PositionRight:  true,
	layout.PositionTop:    true,
	layout.PositionBottom: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the banner pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Prompt is the free-text banner request handed to the advisor and,
	// indirectly, to the background generator.
	Prompt string `json:"prompt"`

	// Text is the banner text. Empty text means a text-free banner.
	Text string `json:"text,omitempty"`

	// Canvas options
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Style  string `json:"style,omitempty"`

	// Text options. An empty Position defers to the advisor's layout
	// suggestion; an empty Color defers to the advisor's first color.
	Position string  `json:"position,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Color    string  `json:"color,omitempty"`

	// Generation options
	UseGenerator bool   `json:"use_generator,omitempty"`
	Seed         *int64 `json:"seed,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"` // Skip the advisor cache

	// Output options
	OutputName string `json:"output_name,omitempty"`
	OutputDir  string `json:"output_dir,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Guidance is the parsed design advice used for the banner.
	Guidance design.Guidance

	// Regions is the computed layout plan.
	Regions []layout.Region

	// Artifact paths.
	PNGPath        string
	SVGPath        string
	BackgroundPath string
	MetadataPath   string
	ControlPath    string

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Paths returns all artifact paths in a fixed order.
func (r *Result) Paths() []string {
	return []string{r.PNGPath, r.SVGPath, r.BackgroundPath, r.MetadataPath, r.ControlPath}
}

// Stats contains pipeline execution statistics.
type Stats struct {
	AdviseTime   time.Duration
	GenerateTime time.Duration
	ComposeTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AdviseHit bool // Whether the advisor response came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateStyle checks that a style is valid. Empty is allowed and means
// the default style.
func ValidateStyle(style string) error {
	if style != "" && !ValidStyles[layout.Style(style)] {
		return errors.New(errors.ErrCodeInvalidStyle,
			"invalid style: %q (must be one of: minimal, geometric, split)", style)
	}
	return nil
}

// ValidatePosition checks that a position is valid. Empty is allowed and
// means the advisor's suggestion decides.
func ValidatePosition(pos string) error {
	if pos != "" && !ValidPositions[layout.Position(pos)] {
		return errors.New(errors.ErrCodeInvalidPosition,
			"invalid position: %q (must be one of: center, left, right, top, bottom)", pos)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Prompt == "" {
		return errors.New(errors.ErrCodeInvalidInput, "prompt is required")
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}

	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if err := ValidatePosition(o.Position); err != nil {
		return err
	}

	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "font size must be positive, got %g", o.FontSize)
	}
	if o.Color != "" {
		if err := errors.ValidateHexColor(o.Color); err != nil {
			return err
		}
	}

	if o.OutputName == "" {
		o.OutputName = DefaultOutputName
	}
	if err := errors.ValidateOutputName(o.OutputName); err != nil {
		return err
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// ResolvePosition returns the effective text position: the explicit
// option when set, otherwise the advisor's layout suggestion. Unknown
// advisor suggestions clamp to center downstream.
func (o *Options) ResolvePosition(g design.Guidance) layout.Position {
	if o.Position != "" {
		return layout.Position(o.Position)
	}
	return layout.Position(g.Layout)
}

// ResolveColor returns the effective text color: the explicit option when
// set, otherwise the advisor's first palette color, otherwise the default.
func (o *Options) ResolveColor(g design.Guidance) string {
	if o.Color != "" {
		return o.Color
	}
	color := g.TextColor(DefaultColor)
	if errors.ValidateHexColor(color) != nil {
		return DefaultColor
	}
	return color
}
