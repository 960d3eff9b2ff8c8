package server

import (
	"sync"

	"github.com/ironsheep/photo-mosaic/internal/tiles"
)

// libraryKey identifies a built library. The same directory described with
// a different tile size or division count is a different library.
type libraryKey struct {
	dir        string
	tileWidth  int
	tileHeight int
	divisions  int
}

// libraryRegistry keeps built tile libraries for the lifetime of the
// server. Libraries are immutable, so concurrent runs share them freely.
type libraryRegistry struct {
	mu   sync.RWMutex
	libs map[libraryKey]*tiles.Library
}

func newLibraryRegistry() *libraryRegistry {
	return &libraryRegistry{libs: make(map[libraryKey]*tiles.Library)}
}

// get returns the library for src/label/divisions, building it on first
// use or when reload is set. cached reports whether an existing library
// was returned.
func (r *libraryRegistry) get(src *tiles.DirSource, label string, divisions int, reload bool) (lib *tiles.Library, cached bool, err error) {
	key := libraryKey{
		dir:        src.Dir(label),
		tileWidth:  src.TileWidth,
		tileHeight: src.TileHeight,
		divisions:  divisions,
	}

	if !reload {
		r.mu.RLock()
		lib, ok := r.libs[key]
		r.mu.RUnlock()
		if ok {
			return lib, true, nil
		}
	}

	lib, err = src.Load(label, divisions)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	r.libs[key] = lib
	r.mu.Unlock()

	return lib, false, nil
}

func (r *libraryRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.libs)
}
