// Package render rasterizes text layers onto banner backgrounds.
//
// The renderer never mutates its input canvas: every pass draws onto a
// fresh copy, so a background can be safely reused across variations.
// Font resolution is injected via a [fonts.Resolver]; rendering silently
// degrades to the embedded fallback font when external fonts are missing.
package render

import (
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"

	"github.com/bannerlord/bannerlord/pkg/banner"
	"github.com/bannerlord/bannerlord/pkg/errors"
	"github.com/bannerlord/bannerlord/pkg/fonts"
	"github.com/bannerlord/bannerlord/pkg/layout"
)

// shadowOffset is the fixed displacement of the shadow pass, in pixels.
const shadowOffset = 3

// shadowColor is the semi-transparent dark used for the shadow pass.
var shadowColor = color.NRGBA{R: 0, G: 0, B: 0, A: 0x80}

// Renderer draws text elements onto canvases.
type Renderer struct {
	Fonts *fonts.Resolver
}

// NewRenderer creates a renderer with the given font resolver.
// A nil resolver falls back to [fonts.DefaultResolver].
func NewRenderer(r *fonts.Resolver) *Renderer {
	if r == nil {
		r = fonts.DefaultResolver()
	}
	return &Renderer{Fonts: r}
}

// Measure returns the rendered bounding-box size of the element's text at
// its font size and family.
func (r *Renderer) Measure(el banner.TextElement) (w, h float64) {
	el = el.WithDefaults()
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(r.Fonts.Face(el.FontFamily, el.FontSize))
	return dc.MeasureString(el.Text)
}

// ResolvePosition returns the top-left corner of the element's bounding
// box on a canvas of the given size. Explicit positions are used verbatim;
// auto positions center the bounding box within region, or within the full
// canvas when region is nil.
func (r *Renderer) ResolvePosition(width, height int, el banner.TextElement, region *layout.Region) banner.Point {
	if el.Position != nil {
		return *el.Position
	}
	w, h := r.Measure(el)

	x0, y0 := 0.0, 0.0
	rw, rh := float64(width), float64(height)
	if region != nil {
		x0, y0 = float64(region.X0), float64(region.Y0)
		rw, rh = float64(region.Width()), float64(region.Height())
	}
	return banner.Point{
		X: x0 + (rw-w)/2,
		Y: y0 + (rh-h)/2,
	}
}

// Render draws one text element onto a copy of background and returns the
// result. The input canvas is never modified.
//
// Draw order per element: shadow pass (when enabled), stroke pass, fill
// pass. The shadow duplicates the text offset by (3,3) in a
// semi-transparent dark color using the same stroke width as the main
// pass, so it reads as a soft outline rather than a hard double image.
//
// Errors: UNRENDERABLE_TEXT when the text is empty after trimming,
// INVALID_COLOR for unparseable fill or stroke colors.
func (r *Renderer) Render(background image.Image, el banner.TextElement, region *layout.Region) (image.Image, error) {
	el = el.WithDefaults()
	if strings.TrimSpace(el.Text) == "" {
		return nil, errors.New(errors.ErrCodeUnrenderableText, "text element is empty")
	}

	fill, err := banner.ParseHexColor(el.Color)
	if err != nil {
		return nil, err
	}
	stroke, err := banner.ParseHexColor(el.StrokeColor)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContextForImage(background)
	dc.SetFontFace(r.Fonts.Face(el.FontFamily, el.FontSize))

	w, h := dc.MeasureString(el.Text)
	pos := r.ResolvePosition(dc.Width(), dc.Height(), el, region)

	// All passes draw through the bounding-box center; gg anchors text at
	// the baseline, so centered anchoring keeps the math exact.
	cx := pos.X + w/2
	cy := pos.Y + h/2

	if el.Shadow {
		drawStroked(dc, el.Text, cx+shadowOffset, cy+shadowOffset, el.StrokeWidth, shadowColor, shadowColor)
	}
	drawStroked(dc, el.Text, cx, cy, el.StrokeWidth, stroke, fill)

	return dc.Image(), nil
}

// drawStroked draws text centered at (cx, cy) with an outline of the given
// radius under the fill. The outline is emulated by redrawing the glyphs
// at every integer offset within the stroke radius.
func drawStroked(dc *gg.Context, text string, cx, cy float64, strokeWidth int, stroke, fill color.Color) {
	if strokeWidth > 0 {
		dc.SetColor(stroke)
		for dx := -strokeWidth; dx <= strokeWidth; dx++ {
			for dy := -strokeWidth; dy <= strokeWidth; dy++ {
				if dx*dx+dy*dy > strokeWidth*strokeWidth {
					continue
				}
				dc.DrawStringAnchored(text, cx+float64(dx), cy+float64(dy), 0.5, 0.5)
			}
		}
	}
	dc.SetColor(fill)
	dc.DrawStringAnchored(text, cx, cy, 0.5, 0.5)
}
