// Package layout derives pixel regions from symbolic layout intent.
//
// A layout plan turns a (style, text position) pair into concrete regions
// for a given canvas size: a guidance border, optional guidance dividers,
// and exactly one text area. The plan is a pure function of its inputs and
// drives both the guidance sketch handed to the image generator and the
// auto-placement of text layers.
package layout

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/bannerlord/bannerlord/pkg/errors"
)

// Style selects the guidance geometry drawn for the generator.
type Style string

// Supported layout styles. Unknown styles fall back to StyleMinimal.
const (
	StyleMinimal   Style = "minimal"
	StyleGeometric Style = "geometric"
	StyleSplit     Style = "split"
)

// Position selects where the text area is reserved.
type Position string

// Supported text positions. Unknown positions fall back to PositionCenter.
const (
	PositionCenter Position = "center"
	PositionLeft   Position = "left"
	PositionRight  Position = "right"
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// Role tags what a region is for.
type Role string

// Region roles.
const (
	RoleBorder   Role = "guidance-border"
	RoleDivider  Role = "guidance-divider"
	RoleTextArea Role = "text-area"
)

// Stroke widths used when sketching regions, in pixels.
const (
	borderStroke   = 3
	dividerStroke  = 2
	splitStroke    = 4
	textAreaStroke = 2
)

// pad is the fixed margin used for edge-hugging text areas.
// It is intentionally not scaled with canvas size: the extents in the
// region table are defined at any resolution in absolute pixels.
const pad = 50

// Region is an axis-aligned rectangle within the canvas, tagged with a role.
// Invariant: X0 < X1, Y0 < Y1, all coordinates within [0,width]x[0,height].
type Region struct {
	X0, Y0 int
	X1, Y1 int
	Role   Role
}

// Width returns the horizontal span of the region.
func (r Region) Width() int { return r.X1 - r.X0 }

// Height returns the vertical span of the region.
func (r Region) Height() int { return r.Y1 - r.Y0 }

// CenterX returns the horizontal center point of the region.
func (r Region) CenterX() float64 { return float64(r.X0+r.X1) / 2 }

// CenterY returns the vertical center point of the region.
func (r Region) CenterY() float64 { return float64(r.Y0+r.Y1) / 2 }

// Plan computes the ordered region list for a canvas of the given size.
//
// The returned slice always starts with the guidance border, followed by
// any style-specific dividers, and ends with exactly one text-area region
// determined by pos. Unknown styles and positions are clamped to
// StyleMinimal and PositionCenter rather than rejected; the only error is
// INVALID_DIMENSIONS for non-positive width or height.
func Plan(width, height int, style Style, pos Position) ([]Region, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}

	regions := []Region{
		clampRegion(Region{X0: 0, Y0: 0, X1: width - 1, Y1: height - 1, Role: RoleBorder}, width, height),
	}

	switch style {
	case StyleGeometric:
		regions = append(regions,
			verticalDivider(width/3, width, height, dividerStroke),
			verticalDivider(2*width/3, width, height, dividerStroke),
		)
	case StyleSplit:
		regions = append(regions, verticalDivider(width/2, width, height, splitStroke))
	default:
		// minimal and unknown styles: border only
	}

	regions = append(regions, textArea(width, height, pos))
	return regions, nil
}

// verticalDivider builds a divider region of the given stroke width,
// centered on x and spanning the full canvas height. The region is clamped
// to the canvas so dividers near either edge stay within bounds; on a
// canvas narrower than the stroke the divider shrinks with it.
func verticalDivider(x, width, height, stroke int) Region {
	x0 := x - stroke/2
	x1 := x0 + stroke
	if x0 < 0 {
		x0, x1 = 0, stroke
	}
	if x1 > width {
		x1 = width
		if x0 > x1-stroke {
			x0 = max(x1-stroke, 0)
		}
	}
	return clampRegion(Region{X0: x0, Y0: 0, X1: x1, Y1: height, Role: RoleDivider}, width, height)
}

// textArea returns the reserved text rectangle for the given position.
// Unknown positions resolve to the center extents.
func textArea(w, h int, pos Position) Region {
	r := Region{Role: RoleTextArea}
	switch pos {
	case PositionLeft:
		r.X0, r.Y0, r.X1, r.Y1 = pad, h/4, w/2-pad, 3*h/4
	case PositionRight:
		r.X0, r.Y0, r.X1, r.Y1 = w/2+pad, h/4, w-pad, 3*h/4
	case PositionTop:
		r.X0, r.Y0, r.X1, r.Y1 = pad, pad, w-pad, h/3
	case PositionBottom:
		r.X0, r.Y0, r.X1, r.Y1 = pad, 2*h/3, w-pad, h-pad
	default:
		r.X0, r.Y0, r.X1, r.Y1 = w/4, h/3, 3*w/4, 2*h/3
	}
	return clampRegion(r, w, h)
}

// clampRegion forces a region inside the canvas while keeping it non-empty.
// Small canvases can push padded extents past an edge; the result is still
// deterministic.
func clampRegion(r Region, w, h int) Region {
	r.X0 = clamp(r.X0, 0, w-1)
	r.Y0 = clamp(r.Y0, 0, h-1)
	r.X1 = clamp(r.X1, r.X0+1, w)
	r.Y1 = clamp(r.Y1, r.Y0+1, h)
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ControlImage renders the plan as a black-on-white guidance sketch.
//
// The sketch is what gets handed to the image generator to bias layout:
// the border and text area as outlined rectangles, dividers as filled
// vertical bars. The caller typically obtains regions from [Plan] for the
// same width and height.
func ControlImage(width, height int, regions []Region) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	for _, r := range regions {
		switch r.Role {
		case RoleBorder:
			dc.SetLineWidth(borderStroke)
			dc.DrawRectangle(float64(r.X0), float64(r.Y0), float64(r.Width()), float64(r.Height()))
			dc.Stroke()
		case RoleDivider:
			dc.DrawRectangle(float64(r.X0), float64(r.Y0), float64(r.Width()), float64(r.Height()))
			dc.Fill()
		case RoleTextArea:
			dc.SetLineWidth(textAreaStroke)
			dc.DrawRectangle(float64(r.X0), float64(r.Y0), float64(r.Width()), float64(r.Height()))
			dc.Stroke()
		}
	}

	return dc.Image()
}

// TextAreaOf returns the text-area region from a plan, or false if the
// slice does not contain one.
func TextAreaOf(regions []Region) (Region, bool) {
	for _, r := range regions {
		if r.Role == RoleTextArea {
			return r, true
		}
	}
	return Region{}, false
}
