package traits

import "math"

// maxDistance is the Euclidean distance between opposite corners of the
// trait space, used to normalize raw distances into [0,1].
var maxDistance = math.Sqrt(5 * DimensionMax * DimensionMax)

// Score returns the similarity between two trait vectors as a value in
// [0,100]. It is the Euclidean distance between the two points, normalized
// by the maximum possible distance and inverted, so identical vectors score
// 100 and opposite corners score 0.
//
// Score is deterministic and symmetric: Score(a, b) == Score(b, a). All
// dimensions are weighted equally. Inputs are expected to be validated at
// the boundary; numeric error is clamped to the nearest bound so the result
// is never NaN or out of range.
func Score(a, b Vector) float64 {
	ad, bd := a.dimensions(), b.dimensions()

	var sum float64
	for i := range ad {
		d := ad[i] - bd[i]
		sum += d * d
	}

	similarity := (1 - math.Sqrt(sum)/maxDistance) * 100
	return clamp(similarity)
}

// clamp bounds a score to [0,100] and maps NaN to 0.
func clamp(s float64) float64 {
	switch {
	case math.IsNaN(s):
		return 0
	case s < 0:
		return 0
	case s > 100:
		return 100
	default:
		return s
	}
}
