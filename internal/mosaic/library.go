package mosaic

import (
	"fmt"
	"image"
	"slices"

	"github.com/anthonynsimon/bild/parallel"
)

// TileRecord pairs a tile image with its descriptor. Index is the tile's
// position in the library and is what a Plan records.
type TileRecord struct {
	Index      int
	Image      image.Image
	Descriptor ColorDescriptor
}

// Library is an immutable, ordered set of tiles described with one division
// count. It is safe for concurrent use once built.
type Library struct {
	divisions int
	tiles     []TileRecord
}

// NewLibrary describes every image over its full area and returns the
// resulting library in input order. Descriptors are computed in parallel.
//
// An empty images slice yields an empty library; composing with it fails
// with ErrEmptyTileLibrary.
//
// # Errors
//
// Returns ErrInvalidInput for divisions < 1 or a nil image, and
// ErrInvalidRegion for a tile smaller than divisions×divisions pixels. The
// error names the lowest failing tile index.
func NewLibrary(images []image.Image, divisions int) (*Library, error) {
	if divisions < 1 {
		return nil, fmt.Errorf("division count %d: %w", divisions, ErrInvalidInput)
	}

	tiles := make([]TileRecord, len(images))
	errs := make([]error, len(images))

	parallel.Line(len(images), func(start, end int) {
		for i := start; i < end; i++ {
			img := images[i]
			if img == nil {
				errs[i] = fmt.Errorf("tile %d: nil image: %w", i, ErrInvalidInput)
				continue
			}
			desc, err := ComputeDescriptor(img, img.Bounds(), divisions)
			if err != nil {
				errs[i] = fmt.Errorf("tile %d: %w", i, err)
				continue
			}
			tiles[i] = TileRecord{Index: i, Image: img, Descriptor: desc}
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	Logger().Debug("tile library built", "tiles", len(tiles), "divisions", divisions)

	return &Library{divisions: divisions, tiles: tiles}, nil
}

// Len returns the number of tiles.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.tiles)
}

// Divisions returns the division count every descriptor was computed with.
func (l *Library) Divisions() int {
	return l.divisions
}

// Tile returns the record at index i.
func (l *Library) Tile(i int) TileRecord {
	return l.tiles[i]
}

// Tiles returns a copy of the records in library order.
func (l *Library) Tiles() []TileRecord {
	return slices.Clone(l.tiles)
}
