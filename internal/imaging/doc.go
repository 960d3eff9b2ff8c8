// Package imaging holds the image plumbing shared by the mosaic engine,
// the tile library loader and the MCP server.
//
// It wraps github.com/disintegration/imaging for decoding (with EXIF
// orientation), JPEG encoding and tile normalization, keeps decoded files in
// a concurrency-safe ImageCache, and provides small helpers for hex colors
// and grid overlays.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Rectangles are half-open:
// Min is inclusive and Max is exclusive.
//
// # Errors
//
// Every failure caused by malformed image bytes wraps ErrDecodeFailure, so
// callers can tell bad input apart from I/O errors with errors.Is.
//
// # Memory
//
// Cached images stay in memory until Evict is called for their path.
package imaging
