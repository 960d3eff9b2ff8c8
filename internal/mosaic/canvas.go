package mosaic

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/transform"
	xdraw "golang.org/x/image/draw"
)

// newBaseLayer returns an opaque canvas filled with backdrop and overlaid
// with src scaled to the canvas size at the given alpha.
func newBaseLayer(src image.Image, width, height int, backdrop color.NRGBA, alpha uint8) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	backdrop.A = 255
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(backdrop), image.Point{}, xdraw.Src)

	overlay := toRGBA(src)
	if overlay.Bounds().Dx() != width || overlay.Bounds().Dy() != height {
		overlay = transform.Resize(overlay, width, height, transform.Linear)
	}

	m := uint32(alpha)
	for y := 0; y < height; y++ {
		ci := canvas.PixOffset(0, y)
		oi := overlay.PixOffset(overlay.Rect.Min.X, overlay.Rect.Min.Y+y)
		for x := 0; x < width; x++ {
			// overlay is premultiplied; scale it and its alpha by m.
			sa := uint32(overlay.Pix[oi+3]) * m / 255
			for c := 0; c < 3; c++ {
				s := uint32(overlay.Pix[oi+c]) * m / 255
				d := uint32(canvas.Pix[ci+c])
				canvas.Pix[ci+c] = uint8(s + d*(255-sa)/255)
			}
			ci += 4
			oi += 4
		}
	}
	return canvas
}

// darken combines tile into canvas with its top-left corner at pt, taking
// the per-channel minimum of base and tile. Tile alpha weights the result
// between the base and the minimum; pixels outside the canvas are skipped.
func darken(canvas *image.RGBA, pt image.Point, tile *image.NRGBA) {
	tb := tile.Bounds()
	dst := image.Rectangle{Min: pt, Max: pt.Add(tb.Size())}.Intersect(canvas.Rect)

	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		ci := canvas.PixOffset(dst.Min.X, y)
		ti := tile.PixOffset(tb.Min.X+dst.Min.X-pt.X, tb.Min.Y+y-pt.Y)
		for x := dst.Min.X; x < dst.Max.X; x++ {
			a := uint32(tile.Pix[ti+3])
			for c := 0; c < 3; c++ {
				base := uint32(canvas.Pix[ci+c])
				m := min(base, uint32(tile.Pix[ti+c]))
				canvas.Pix[ci+c] = uint8((m*a + base*(255-a)) / 255)
			}
			ci += 4
			ti += 4
		}
	}
}

// scaleTile returns img resampled to width×height. Images already at that
// size are copied unchanged.
func scaleTile(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	return rgba
}
