package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// GridOverlay returns a copy of img with one-pixel lines drawn along the
// boundaries of a cellWidth×cellHeight grid anchored at the top-left corner.
// Lines are composited over the image, so a translucent lineColor lets the
// underlying tiles show through. Non-positive cell sizes disable that axis.
func GridOverlay(img image.Image, cellWidth, cellHeight int, lineColor color.Color) *image.NRGBA {
	bounds := img.Bounds()
	result := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	width, height := result.Rect.Dx(), result.Rect.Dy()
	line := image.NewUniform(lineColor)

	// Vertical lines
	if cellWidth > 0 {
		for x := cellWidth; x < width; x += cellWidth {
			draw.Draw(result, image.Rect(x, 0, x+1, height), line, image.Point{}, draw.Over)
		}
	}

	// Horizontal lines
	if cellHeight > 0 {
		for y := cellHeight; y < height; y += cellHeight {
			draw.Draw(result, image.Rect(0, y, width, y+1), line, image.Point{}, draw.Over)
		}
	}

	return result
}
