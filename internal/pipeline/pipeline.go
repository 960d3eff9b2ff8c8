// Package pipeline runs a complete mosaic job: decode the source, render it
// against a tile library, optionally draw a cell grid, and encode the JPEG.
// It is shared by the command-line tool and the MCP server.
package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/ironsheep/photo-mosaic/internal/imaging"
	"github.com/ironsheep/photo-mosaic/internal/mosaic"
)

// MaxSeed bounds generated seeds. See mosaic.MaxSeed.
const MaxSeed = mosaic.MaxSeed

// Options controls one mosaic job. Zero values select the defaults of
// mosaic.DefaultOptions.
type Options struct {
	TileWidth  int
	TileHeight int
	Scale      int
	Quality    int // JPEG quality (1-100)

	// BestProbability is the chance of using the best match rather than
	// the runner-up. Nil selects the default of 0.8.
	BestProbability *float64

	// Scorer names the descriptor scoring function: "quadrant" or "lab".
	Scorer string

	// Seed fixes the random generator. Nil picks a random seed below
	// MaxSeed, which is reported in Result.Seed.
	Seed *uint64

	// GridColor, when set, draws cell boundaries in that hex color.
	GridColor string
}

// Result holds the output of a pipeline run.
type Result struct {
	Data []byte // encoded JPEG

	Width  int
	Height int

	SourceWidth  int
	SourceHeight int

	Seed uint64
	Plan *mosaic.Plan

	// DistinctTiles counts the library tiles used at least once.
	DistinctTiles int
}

// ParseScorer maps a scorer name to its function. The empty name selects
// the default quadrant heuristic.
func ParseScorer(name string) (mosaic.Scorer, error) {
	switch name {
	case "", "quadrant":
		return mosaic.QuadrantScore, nil
	case "lab":
		return mosaic.LabScore, nil
	default:
		return nil, fmt.Errorf("unknown scorer %q (want quadrant or lab): %w", name, mosaic.ErrInvalidInput)
	}
}

// Run decodes sourceData and renders it. See RunImage.
func Run(sourceData []byte, lib *mosaic.Library, opts Options) (*Result, error) {
	src, err := imaging.DecodeBytes(sourceData)
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	return RunImage(src, lib, opts)
}

// RunImage renders src from lib and encodes the result: options → render →
// grid overlay → encode.
func RunImage(src image.Image, lib *mosaic.Library, opts Options) (*Result, error) {
	// 1. Resolve options
	mopts, seed, err := opts.mosaicOptions()
	if err != nil {
		return nil, err
	}

	// 2. Render
	canvas, plan, err := mosaic.Render(src, lib, mopts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	// 3. Optional grid
	var out image.Image = canvas
	if opts.GridColor != "" {
		c, err := imaging.ParseHexColor(opts.GridColor)
		if err != nil {
			return nil, fmt.Errorf("grid color: %w", err)
		}
		out = imaging.GridOverlay(canvas, mopts.TileWidth*mopts.Scale, mopts.TileHeight*mopts.Scale, c)
	}

	// 4. Encode
	var buf bytes.Buffer
	if err := imaging.EncodeJPEG(&buf, out, mopts.Quality); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	b := src.Bounds()
	return &Result{
		Data:          buf.Bytes(),
		Width:         canvas.Rect.Dx(),
		Height:        canvas.Rect.Dy(),
		SourceWidth:   b.Dx(),
		SourceHeight:  b.Dy(),
		Seed:          seed,
		Plan:          plan,
		DistinctTiles: len(plan.Usage()),
	}, nil
}

func (o Options) mosaicOptions() (mosaic.Options, uint64, error) {
	mopts := mosaic.DefaultOptions()
	if o.TileWidth != 0 {
		mopts.TileWidth = o.TileWidth
	}
	if o.TileHeight != 0 {
		mopts.TileHeight = o.TileHeight
	}
	if o.Scale != 0 {
		mopts.Scale = o.Scale
	}
	if o.Quality != 0 {
		mopts.Quality = o.Quality
	}

	scorer, err := ParseScorer(o.Scorer)
	if err != nil {
		return mosaic.Options{}, 0, err
	}
	policy := mosaic.DefaultSelectionPolicy()
	if o.BestProbability != nil {
		policy.BestProbability = *o.BestProbability
	}
	mopts.Matcher = &mosaic.Matcher{Scorer: scorer, Policy: policy}

	var seed uint64
	if o.Seed != nil {
		seed = *o.Seed
	} else {
		seed = rand.Uint64N(MaxSeed)
	}
	mopts.Rand = mosaic.NewRand(seed)

	return mopts, seed, nil
}
