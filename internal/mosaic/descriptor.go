package mosaic

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit, non-premultiplied color triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// ColorDescriptor is the reduced-resolution color signature of a region: a
// Divisions×Divisions grid of average colors stored row-major.
type ColorDescriptor struct {
	Divisions int   `json:"divisions"`
	Cells     []RGB `json:"cells"`
}

// At returns the average color of sub-cell (x, y).
func (d ColorDescriptor) At(x, y int) RGB {
	return d.Cells[y*d.Divisions+x]
}

// ComputeDescriptor averages the colors of rect in img over a
// divisions×divisions grid of sub-cells.
//
// Each sub-cell is rect.Dx()/divisions wide and rect.Dy()/divisions tall;
// pixels left over by the integer division are not sampled. Channel
// averages are truncated, not rounded.
//
// The function is pure and safe to call concurrently on the same image.
//
// # Errors
//
// Returns an error wrapping ErrInvalidRegion when divisions < 1, when rect
// is empty or not contained in img.Bounds(), or when a sub-cell would have
// zero width or height.
func ComputeDescriptor(img image.Image, rect image.Rectangle, divisions int) (ColorDescriptor, error) {
	if divisions < 1 {
		return ColorDescriptor{}, fmt.Errorf("division count %d: %w", divisions, ErrInvalidRegion)
	}
	if rect.Empty() || !rect.In(img.Bounds()) {
		return ColorDescriptor{}, fmt.Errorf("region %v outside image bounds %v: %w", rect, img.Bounds(), ErrInvalidRegion)
	}

	subWidth := rect.Dx() / divisions
	subHeight := rect.Dy() / divisions
	if subWidth == 0 || subHeight == 0 {
		return ColorDescriptor{}, fmt.Errorf("region %dx%d too small for %d divisions: %w",
			rect.Dx(), rect.Dy(), divisions, ErrInvalidRegion)
	}

	cells := make([]RGB, divisions*divisions)
	for dy := 0; dy < divisions; dy++ {
		for dx := 0; dx < divisions; dx++ {
			x0 := rect.Min.X + dx*subWidth
			y0 := rect.Min.Y + dy*subHeight
			cells[dy*divisions+dx] = averageRGB(img, image.Rect(x0, y0, x0+subWidth, y0+subHeight))
		}
	}

	return ColorDescriptor{Divisions: divisions, Cells: cells}, nil
}

// averageRGB returns the truncated mean of each channel over r, which must
// be non-empty and inside img.
func averageRGB(img image.Image, r image.Rectangle) RGB {
	var sumR, sumG, sumB uint64

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			i := nrgba.PixOffset(r.Min.X, y)
			for x := r.Min.X; x < r.Max.X; x++ {
				sumR += uint64(nrgba.Pix[i+0])
				sumG += uint64(nrgba.Pix[i+1])
				sumB += uint64(nrgba.Pix[i+2])
				i += 4
			}
		}
	} else {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				sumR += uint64(c.R)
				sumG += uint64(c.G)
				sumB += uint64(c.B)
			}
		}
	}

	n := uint64(r.Dx() * r.Dy())
	return RGB{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
	}
}
