package tiles

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/photo-mosaic/internal/imaging"
	"github.com/ironsheep/photo-mosaic/internal/mosaic"
)

// DirSource loads tile images from a directory tree.
type DirSource struct {
	// Root is the directory holding tiles, or label sub-directories.
	Root string

	// TileWidth and TileHeight, when both positive, normalize every tile to
	// that size by centre crop and resize. Otherwise tiles are kept as read
	// and scaled when drawn.
	TileWidth  int
	TileHeight int

	// Cache, when set, is used to read files and keeps the decoded
	// originals until the caller evicts them. When nil, Images reads through
	// a private cache dropped after the call.
	Cache *imaging.ImageCache
}

// Library is a mosaic library together with the files its tiles came from.
type Library struct {
	*mosaic.Library

	// Dir is the directory that was read.
	Dir string

	// Paths[i] is the file of tile i.
	Paths []string
}

// Dir returns the directory holding tiles for label. An empty label selects
// Root itself.
func (s *DirSource) Dir(label string) string {
	if label == "" {
		return s.Root
	}
	return filepath.Join(s.Root, LabelKey(label))
}

// Files lists the image files in dir sorted by name. Sub-directories and
// files without an image extension are skipped.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// Images decodes every image file in dir, in name order, normalizing each
// one when a tile size is set.
//
// # Errors
//
// Any file that fails to decode aborts the load; the error names the file
// and wraps imaging.ErrDecodeFailure.
func (s *DirSource) Images(dir string) ([]image.Image, []string, error) {
	paths, err := Files(dir)
	if err != nil {
		return nil, nil, err
	}

	cache := s.Cache
	if cache == nil {
		cache = imaging.NewImageCache()
	}

	images := make([]image.Image, len(paths))
	errs := make([]error, len(paths))

	parallel.Line(len(paths), func(start, end int) {
		for i := start; i < end; i++ {
			img, err := cache.Load(paths[i])
			if err != nil {
				errs[i] = err
				continue
			}
			if s.TileWidth > 0 && s.TileHeight > 0 {
				img, err = imaging.NormalizeTile(img, s.TileWidth, s.TileHeight)
				if err != nil {
					errs[i] = fmt.Errorf("%s: %w", paths[i], err)
					continue
				}
			}
			images[i] = img
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return images, paths, nil
}

// Load builds a library from the tiles for label, describing each tile with
// the given division count.
//
// # Errors
//
//   - Returns error if the directory cannot be read or a tile fails to decode
//   - Returns error wrapping mosaic.ErrEmptyTileLibrary if it holds no images
//   - Returns mosaic.ErrInvalidInput or mosaic.ErrInvalidRegion from
//     mosaic.NewLibrary for an unusable division count
func (s *DirSource) Load(label string, divisions int) (*Library, error) {
	dir := s.Dir(label)

	images, paths, err := s.Images(dir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, mosaic.ErrEmptyTileLibrary)
	}

	lib, err := mosaic.NewLibrary(images, divisions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}

	mosaic.Logger().Info("tile library loaded",
		"dir", dir, "label", label, "tiles", lib.Len(), "divisions", divisions)

	return &Library{Library: lib, Dir: dir, Paths: paths}, nil
}
