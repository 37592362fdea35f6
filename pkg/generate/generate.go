// Package generate produces banner background images.
//
// The diffusion generator is an external collaborator reached over HTTP:
// it consumes a prompt and a guidance sketch (from [layout.ControlImage])
// and returns one raster of the requested dimensions. The gradient
// generator is the deterministic offline branch; the orchestrator uses it
// both on request and when the diffusion service is unreachable.
//
// [layout.ControlImage]: github.com/bannerlord/bannerlord/pkg/layout.ControlImage
package generate

import (
	"context"
	"image"
)

// Generation defaults, tuned for ControlNet-guided diffusion.
const (
	DefaultSteps             = 30
	DefaultGuidanceScale     = 7.5
	DefaultConditioningScale = 1.0

	// DefaultNegativePrompt lists what the diffusion service should avoid;
	// text and watermarks are excluded because the compositor draws all
	// text itself.
	DefaultNegativePrompt = "ugly, blurry, low quality, distorted, text, watermark"
)

// Generator produces a background image for a prompt, biased by a
// guidance sketch. Implementations may be slow; they must honor ctx.
type Generator interface {
	Generate(ctx context.Context, prompt string, control image.Image) (image.Image, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string, control image.Image) (image.Image, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, control image.Image) (image.Image, error) {
	return f(ctx, prompt, control)
}
