package render

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/bannerlord/bannerlord/pkg/banner"
	"github.com/bannerlord/bannerlord/pkg/layout"
)

// Compositor layers text elements over a background and is the single
// entry point the pipeline uses for banner assembly.
type Compositor struct {
	Renderer *Renderer
}

// NewCompositor creates a compositor with the given renderer.
// A nil renderer gets default font resolution.
func NewCompositor(r *Renderer) *Compositor {
	if r == nil {
		r = NewRenderer(nil)
	}
	return &Compositor{Renderer: r}
}

// Compose applies the elements to a copy of background in slice order,
// each pass layered on the previous result. The canvas dimensions never
// change, and an empty element list returns an unchanged copy.
func (c *Compositor) Compose(background image.Image, elements []banner.TextElement) (image.Image, error) {
	return c.ComposeIn(background, elements, nil)
}

// ComposeIn is Compose with an optional containing region for
// auto-placed elements. Explicitly positioned elements ignore the region.
func (c *Compositor) ComposeIn(background image.Image, elements []banner.TextElement, region *layout.Region) (image.Image, error) {
	if len(elements) == 0 {
		// Still return a copy so callers can always treat the result as owned.
		return gg.NewContextForImage(background).Image(), nil
	}

	result := background
	for _, el := range elements {
		img, err := c.Renderer.Render(result, el, region)
		if err != nil {
			return nil, err
		}
		result = img
	}
	return result, nil
}
