package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// NormalizeTile crops img to the aspect ratio of width×height around its
// centre and resizes it to exactly that size, so every tile in a library
// covers its cell without distortion.
func NormalizeTile(img image.Image, width, height int) (*image.NRGBA, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid tile size %dx%d", width, height)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("cannot normalize an empty image")
	}
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos), nil
}
