// Package traits defines the five-dimensional play-style vector and the
// similarity scoring between two vectors.
package traits

import (
	"fmt"
	"math"
)

// DimensionMax is the upper bound of every trait dimension.
const DimensionMax = 100.0

// Vector is a point in the five-dimensional play-style space. Each dimension
// is constrained to [0,100]. A vector is computed wholesale from a trait
// assessment submission and never partially updated.
type Vector struct {
	Cooperation float64 `json:"cooperation"`
	Exploration float64 `json:"exploration"`
	Strategy    float64 `json:"strategy"`
	Leadership  float64 `json:"leadership"`
	Social      float64 `json:"social"`
}

// dimensions returns the vector's components in canonical order.
func (v Vector) dimensions() [5]float64 {
	return [5]float64{v.Cooperation, v.Exploration, v.Strategy, v.Leadership, v.Social}
}

var dimensionNames = [5]string{"cooperation", "exploration", "strategy", "leadership", "social"}

// Validate checks that every dimension is a real number in [0,100].
// An out-of-range dimension indicates an upstream bug and is rejected
// rather than clamped.
func (v Vector) Validate() error {
	for i, d := range v.dimensions() {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("trait %s is not a finite number", dimensionNames[i])
		}
		if d < 0 || d > DimensionMax {
			return fmt.Errorf("trait %s out of range: %v (want 0-%v)", dimensionNames[i], d, DimensionMax)
		}
	}
	return nil
}
