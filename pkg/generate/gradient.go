package generate

import (
	"context"
	"image"
	"image/color"
)

// Gradient is the non-diffusion background branch: a deterministic
// vertical gradient starting from a dark slate base. It ignores the
// prompt and guidance sketch apart from taking the canvas size from the
// sketch, and it never fails.
type Gradient struct{}

// Generate implements Generator.
func (Gradient) Generate(_ context.Context, _ string, control image.Image) (image.Image, error) {
	bounds := control.Bounds()
	return GradientBackground(bounds.Dx(), bounds.Dy()), nil
}

// GradientBackground renders a width x height vertical gradient from
// #2c3e50, brightening row by row. The per-row shade formula is fixed so
// identical dimensions always produce identical pixels.
func GradientBackground(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		r := uint8(44 + (float64(y)/float64(height))*30)
		g := clampByte(62 + y/20)
		row := color.RGBA{R: r, G: g, B: 80, A: 0xff}
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, row)
		}
	}
	return img
}

func clampByte(v int) uint8 {
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}
