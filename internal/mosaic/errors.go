package mosaic

import (
	"errors"

	mimaging "github.com/ironsheep/photo-mosaic/internal/imaging"
)

var (
	// ErrInvalidRegion reports a rectangle/division combination that yields
	// an empty sub-cell, or a rectangle outside the image.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrInvalidInput reports a source smaller than one tile or unusable options.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyTileLibrary reports a run with no tiles to match against.
	ErrEmptyTileLibrary = errors.New("empty tile library")

	// ErrDecodeFailure reports malformed image bytes.
	ErrDecodeFailure = mimaging.ErrDecodeFailure
)
