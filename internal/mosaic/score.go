package mosaic

import "math"

// Scorer compares two descriptors with the same division count. Lower
// scores are better matches and a descriptor scored against itself is 0.
type Scorer func(a, b ColorDescriptor) float64

// QuadrantScore is the default mosaic scoring heuristic. For every sub-cell
// it takes the square root of the summed absolute differences of squared
// channel values:
//
//	sqrt(|Ra²-Rb²| + |Ga²-Gb²| + |Ba²-Bb²|)
//
// and adds the results. This is not a Euclidean distance (the channels are
// squared before they are differenced) and is kept as-is so existing mosaics
// stay reproducible. Use LabScore for a perceptual distance.
func QuadrantScore(a, b ColorDescriptor) float64 {
	var total float64
	for i := range a.Cells {
		ca, cb := a.Cells[i], b.Cells[i]
		total += math.Sqrt(squaredChannelDiff(ca.R, cb.R) +
			squaredChannelDiff(ca.G, cb.G) +
			squaredChannelDiff(ca.B, cb.B))
	}
	return total
}

func squaredChannelDiff(a, b uint8) float64 {
	fa, fb := float64(a), float64(b)
	return math.Abs(fa*fa - fb*fb)
}

// LabScore sums the CIE L*a*b* distances of corresponding sub-cells.
func LabScore(a, b ColorDescriptor) float64 {
	var total float64
	for i := range a.Cells {
		total += a.Cells[i].colorful().DistanceLab(b.Cells[i].colorful())
	}
	return total
}
