package mosaic

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	mimaging "github.com/ironsheep/photo-mosaic/internal/imaging"
)

// Default option values.
const (
	DefaultTileSize     = 20
	DefaultScale        = 1
	DefaultDivisions    = 1
	DefaultOverlayAlpha = 200
)

// MaxCanvasPixels bounds the output canvas area.
const MaxCanvasPixels = 1 << 27

// MaxSeed bounds generated seeds so they survive a round trip through a
// JSON number (53-bit mantissa).
const MaxSeed = 1 << 53

// Options configures one composition run.
type Options struct {
	// TileWidth and TileHeight are the cell size in source pixels.
	TileWidth  int
	TileHeight int

	// Scale multiplies the cell size on the output canvas.
	Scale int

	// Quality is the JPEG quality (1-100) used by Compose.
	Quality int

	// OverlayAlpha is the opacity of the source layer drawn over Backdrop.
	OverlayAlpha uint8

	// Backdrop fills the canvas before the source layer is drawn.
	Backdrop color.NRGBA

	// Matcher selects tiles; NewMatcher() when nil.
	Matcher *Matcher

	// Rand drives visitation order and tile selection. When nil a
	// generator is seeded randomly and the seed is reported in Result.
	Rand *rand.Rand
}

// DefaultOptions returns 20×20 tiles, scale 1, JPEG quality 80, a white
// backdrop under a 200/255 source overlay and the default matcher.
func DefaultOptions() Options {
	return Options{
		TileWidth:    DefaultTileSize,
		TileHeight:   DefaultTileSize,
		Scale:        DefaultScale,
		Quality:      mimaging.DefaultJPEGQuality,
		OverlayAlpha: DefaultOverlayAlpha,
		Backdrop:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Matcher:      NewMatcher(),
	}
}

// NewRand returns a generator for a fixed seed. Two runs given generators
// with the same seed produce the same plan.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func (o Options) validate() error {
	if o.TileWidth < 1 || o.TileHeight < 1 {
		return fmt.Errorf("tile size %dx%d: %w", o.TileWidth, o.TileHeight, ErrInvalidInput)
	}
	if o.Scale < 1 {
		return fmt.Errorf("scale %d: %w", o.Scale, ErrInvalidInput)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("quality %d not in 1-100: %w", o.Quality, ErrInvalidInput)
	}
	if o.Matcher != nil {
		if err := o.Matcher.Policy.validate(); err != nil {
			return err
		}
	}
	return nil
}

// canvasSize returns the output size of a columns×rows grid, or an error if
// it would exceed MaxCanvasPixels. Every argument must be positive.
func canvasSize(columns, rows, tileWidth, tileHeight, scale int) (width, height int, err error) {
	tooLarge := func() error {
		return fmt.Errorf("canvas of %dx%d cells at %dx%d pixels and scale %d exceeds %d pixels: %w",
			columns, rows, tileWidth, tileHeight, scale, MaxCanvasPixels, ErrInvalidInput)
	}
	if tileWidth > MaxCanvasPixels/scale || tileHeight > MaxCanvasPixels/scale {
		return 0, 0, tooLarge()
	}
	tileW, tileH := tileWidth*scale, tileHeight*scale
	if columns > MaxCanvasPixels/tileW || rows > MaxCanvasPixels/tileH {
		return 0, 0, tooLarge()
	}
	width, height = columns*tileW, rows*tileH
	if width > MaxCanvasPixels/height {
		return 0, 0, tooLarge()
	}
	return width, height, nil
}

// GridSize returns how many whole tiles fit across and down a source image.
// Remainder pixels on the right and bottom edges are not tiled.
func GridSize(width, height, tileWidth, tileHeight int) (columns, rows int) {
	return width / tileWidth, height / tileHeight
}

// Result is the output of Compose.
type Result struct {
	// Data is the encoded JPEG.
	Data []byte

	// Width and Height are the canvas dimensions in pixels.
	Width  int
	Height int

	Plan *Plan

	// Seed is the generated seed, below MaxSeed, when Options.Rand was nil.
	// It is zero otherwise.
	Seed uint64
}

// Compose renders a mosaic of src from lib and encodes it as JPEG. Either a
// complete mosaic or an error is returned, never a partial image.
func Compose(src image.Image, lib *Library, opts Options) (*Result, error) {
	var seed uint64
	if opts.Rand == nil {
		seed = rand.Uint64N(MaxSeed)
		opts.Rand = NewRand(seed)
		Logger().Debug("seeded mosaic generator", "seed", seed)
	}

	canvas, plan, err := Render(src, lib, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := mimaging.EncodeJPEG(&buf, canvas, opts.Quality); err != nil {
		return nil, err
	}

	return &Result{
		Data:   buf.Bytes(),
		Width:  canvas.Rect.Dx(),
		Height: canvas.Rect.Dy(),
		Plan:   plan,
		Seed:   seed,
	}, nil
}

// Render runs every stage of a composition except encoding and returns the
// canvas and plan. A nil opts.Rand is seeded randomly without reporting the
// seed; use Compose or NewRand for reproducible runs.
func Render(src image.Image, lib *Library, opts Options) (*image.RGBA, *Plan, error) {
	if src == nil {
		return nil, nil, fmt.Errorf("nil source image: %w", ErrInvalidInput)
	}
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	if opts.Matcher == nil {
		opts.Matcher = NewMatcher()
	}
	if opts.Rand == nil {
		opts.Rand = NewRand(rand.Uint64())
	}

	start := time.Now()
	b := src.Bounds()
	columns, rows := GridSize(b.Dx(), b.Dy(), opts.TileWidth, opts.TileHeight)
	if columns == 0 || rows == 0 {
		return nil, nil, fmt.Errorf("source %dx%d smaller than one %dx%d tile: %w",
			b.Dx(), b.Dy(), opts.TileWidth, opts.TileHeight, ErrInvalidInput)
	}

	width, height, err := canvasSize(columns, rows, opts.TileWidth, opts.TileHeight, opts.Scale)
	if err != nil {
		return nil, nil, err
	}

	cells := gridCells(columns, rows)
	if lib.Len() == 0 {
		return nil, nil, ErrEmptyTileLibrary
	}

	// Only the tiled region takes part; edge remainders are dropped here.
	region := imaging.Crop(src, image.Rect(b.Min.X, b.Min.Y,
		b.Min.X+columns*opts.TileWidth, b.Min.Y+rows*opts.TileHeight))

	descriptors, err := describeGrid(region, columns, rows, opts.TileWidth, opts.TileHeight, lib.Divisions())
	if err != nil {
		return nil, nil, err
	}

	order := visitationOrder(cells, opts.Rand)

	tileW, tileH := opts.TileWidth*opts.Scale, opts.TileHeight*opts.Scale
	canvas := newBaseLayer(region, width, height, opts.Backdrop, opts.OverlayAlpha)

	Logger().Debug("mosaic grid",
		"columns", columns, "rows", rows,
		"canvas_width", canvas.Rect.Dx(), "canvas_height", canvas.Rect.Dy(),
		"tiles", lib.Len(), "divisions", lib.Divisions())

	plan := newPlan(columns, rows)
	scaled := make(map[int]*image.NRGBA)
	for _, cell := range order {
		tile, err := opts.Matcher.SelectTile(descriptors[cell.Y*columns+cell.X], lib, opts.Rand)
		if err != nil {
			return nil, nil, fmt.Errorf("cell (%d,%d): %w", cell.X, cell.Y, err)
		}
		plan.assign(cell, tile.Index)

		img, ok := scaled[tile.Index]
		if !ok {
			img = scaleTile(tile.Image, tileW, tileH)
			scaled[tile.Index] = img
		}
		darken(canvas, image.Pt(cell.X*tileW, cell.Y*tileH), img)
	}

	Logger().Info("mosaic rendered",
		"cells", len(order), "distinct_tiles", len(scaled), "elapsed", time.Since(start))

	return canvas, plan, nil
}

// describeGrid computes the descriptor of every cell of region in parallel.
// The result is row-major; the lowest failing cell is reported.
func describeGrid(region image.Image, columns, rows, tileWidth, tileHeight, divisions int) ([]ColorDescriptor, error) {
	descriptors := make([]ColorDescriptor, columns*rows)
	errs := make([]error, columns*rows)

	parallel.Line(len(descriptors), func(start, end int) {
		for i := start; i < end; i++ {
			x, y := i%columns, i/columns
			rect := image.Rect(x*tileWidth, y*tileHeight, (x+1)*tileWidth, (y+1)*tileHeight)
			desc, err := ComputeDescriptor(region, rect, divisions)
			if err != nil {
				errs[i] = fmt.Errorf("cell (%d,%d): %w", x, y, err)
				continue
			}
			descriptors[i] = desc
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return descriptors, nil
}
