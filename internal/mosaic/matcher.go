package mosaic

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
)

// SelectionPolicy decides between the best and second-best match.
type SelectionPolicy struct {
	// BestProbability is the chance, in [0, 1], of returning the best
	// match. The runner-up is returned otherwise.
	BestProbability float64
}

// DefaultSelectionPolicy picks the best match 80% of the time.
func DefaultSelectionPolicy() SelectionPolicy {
	return SelectionPolicy{BestProbability: 0.8}
}

func (p SelectionPolicy) validate() error {
	if !(p.BestProbability >= 0 && p.BestProbability <= 1) {
		return fmt.Errorf("best match probability %v not in [0,1]: %w", p.BestProbability, ErrInvalidInput)
	}
	return nil
}

// pick returns the rank to use among n candidates. A draw is consumed only
// when there is a runner-up to choose.
func (p SelectionPolicy) pick(n int, rng *rand.Rand) int {
	if n < 2 {
		return 0
	}
	if rng.Float64() < p.BestProbability {
		return 0
	}
	return 1
}

// Match is a scored library tile.
type Match struct {
	Tile  TileRecord
	Score float64
}

// Matcher selects library tiles for cell descriptors. It keeps no state
// between calls, so the same tile may be chosen for neighbouring cells.
type Matcher struct {
	// Scorer ranks tiles; QuadrantScore when nil.
	Scorer Scorer
	Policy SelectionPolicy
}

// NewMatcher returns a matcher using QuadrantScore and the default policy.
func NewMatcher() *Matcher {
	return &Matcher{
		Scorer: QuadrantScore,
		Policy: DefaultSelectionPolicy(),
	}
}

// Rank scores every tile against cell and returns them best first. Tiles
// with equal scores keep their library order.
func (m *Matcher) Rank(cell ColorDescriptor, lib *Library) ([]Match, error) {
	if lib.Len() == 0 {
		return nil, ErrEmptyTileLibrary
	}
	if cell.Divisions != lib.Divisions() {
		return nil, fmt.Errorf("cell descriptor has %d divisions, library has %d: %w",
			cell.Divisions, lib.Divisions(), ErrInvalidInput)
	}

	score := m.Scorer
	if score == nil {
		score = QuadrantScore
	}

	matches := make([]Match, len(lib.tiles))
	for i, tile := range lib.tiles {
		matches[i] = Match{Tile: tile, Score: score(cell, tile.Descriptor)}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(a.Score, b.Score)
	})
	return matches, nil
}

// SelectTile ranks the library against cell and applies the selection
// policy using rng.
func (m *Matcher) SelectTile(cell ColorDescriptor, lib *Library, rng *rand.Rand) (TileRecord, error) {
	if rng == nil {
		return TileRecord{}, fmt.Errorf("nil random generator: %w", ErrInvalidInput)
	}
	ranked, err := m.Rank(cell, lib)
	if err != nil {
		return TileRecord{}, err
	}
	return ranked[m.Policy.pick(len(ranked), rng)].Tile, nil
}
