// Package banner defines the data model for banner documents.
//
// A banner is a background canvas plus an ordered list of text layers.
// Later layers are painted on top of earlier ones. The model round-trips
// losslessly through the metadata JSON format in [render/sink].
//
// [render/sink]: github.com/bannerlord/bannerlord/pkg/render/sink
package banner

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"github.com/bannerlord/bannerlord/pkg/errors"
)

// Default values applied to layers with unset fields.
const (
	DefaultFontSize    = 72.0
	DefaultFontFamily  = "Sans"
	DefaultColor       = "#FFFFFF"
	DefaultStrokeColor = "#000000"
	DefaultStrokeWidth = 2
	DefaultAlignment   = "center"
)

// Point is a pixel coordinate on the canvas.
// It serializes as a two-element JSON array to match the metadata format.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes [x, y] into the point.
func (p *Point) UnmarshalJSON(data []byte) error {
	var arr [2]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("position must be a [x, y] array: %w", err)
	}
	p.X, p.Y = arr[0], arr[1]
	return nil
}

// TextElement is a single text layer of a banner.
//
// Position is the top-left corner of the rendered text's bounding box.
// A nil Position means the layer is auto-placed: the renderer centers the
// bounding box within the containing region (or the full canvas). Auto
// placement is resolved at render time and is never baked into exports.
type TextElement struct {
	Text        string  `json:"text"`
	Position    *Point  `json:"position"`
	FontSize    float64 `json:"font_size"`
	FontFamily  string  `json:"font_family"`
	Color       string  `json:"color"`
	Alignment   string  `json:"alignment"`
	StrokeWidth int     `json:"stroke_width"`
	StrokeColor string  `json:"stroke_color"`
	Shadow      bool    `json:"shadow"`
}

// WithDefaults returns a copy of the element with unset fields replaced by
// the package defaults. The zero value for Shadow is kept as-is (off).
func (e TextElement) WithDefaults() TextElement {
	if e.FontSize <= 0 {
		e.FontSize = DefaultFontSize
	}
	if e.FontFamily == "" {
		e.FontFamily = DefaultFontFamily
	}
	if e.Color == "" {
		e.Color = DefaultColor
	}
	if e.StrokeColor == "" {
		e.StrokeColor = DefaultStrokeColor
	}
	if e.Alignment == "" {
		e.Alignment = DefaultAlignment
	}
	return e
}

// Document is the unit of export and import: a background reference plus
// the ordered layer list. Width and Height describe the background canvas.
type Document struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Background string        `json:"background"`
	Layers     []TextElement `json:"text_layers"`
}

// ParseHexColor parses a hex color string (#RGB, #RRGGBB or #RRGGBBAA)
// into an RGBA color. Returns an INVALID_COLOR error for anything else.
func ParseHexColor(s string) (color.RGBA, error) {
	if err := errors.ValidateHexColor(s); err != nil {
		return color.RGBA{}, err
	}
	hex := strings.TrimPrefix(s, "#")

	var r, g, b, a uint8 = 0, 0, 0, 0xff
	switch len(hex) {
	case 3:
		r = hexNibble(hex[0]) * 0x11
		g = hexNibble(hex[1]) * 0x11
		b = hexNibble(hex[2]) * 0x11
	case 6, 8:
		r = hexNibble(hex[0])<<4 | hexNibble(hex[1])
		g = hexNibble(hex[2])<<4 | hexNibble(hex[3])
		b = hexNibble(hex[4])<<4 | hexNibble(hex[5])
		if len(hex) == 8 {
			a = hexNibble(hex[6])<<4 | hexNibble(hex[7])
		}
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
