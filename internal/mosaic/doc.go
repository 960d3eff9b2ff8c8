// Package mosaic implements the tile matching and composition engine that
// turns a source photograph into a photo mosaic.
//
// A run partitions the source into a grid of tile-sized cells, computes a
// reduced-resolution color descriptor for every cell, picks a tile for each
// cell from an immutable [Library] and composites the chosen tiles over a
// translucent copy of the source using a darken combine.
//
// # Descriptors
//
// A [ColorDescriptor] is an N×N grid of average RGB values, where N is the
// division count. Library tiles are described over their full area; grid
// cells are described over their region of the source image. Both use the
// same division count so they can be scored against each other.
//
// # Randomness
//
// Every run owns one explicit *rand.Rand. It drives the visitation order of
// the grid and the near-best selection policy of the [Matcher], so a fixed
// seed yields the same [Plan] every time:
//
//	opts := mosaic.DefaultOptions()
//	opts.Rand = mosaic.NewRand(42)
//	result, err := mosaic.Compose(src, lib, opts)
//
// # Thread Safety
//
// A built [Library] is read-only and may be shared by concurrent runs.
// Canvas, plan and generator belong to a single run. Descriptor computation
// is spread across goroutines; rendering is sequential.
//
// # Errors
//
// Failures wrap one of [ErrInvalidRegion], [ErrInvalidInput],
// [ErrEmptyTileLibrary] or [ErrDecodeFailure] and name the offending cell or
// tile. Use errors.Is to classify them.
package mosaic
