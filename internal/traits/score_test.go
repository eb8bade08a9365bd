package traits

import (
	"math"
	"testing"
)

func TestScore_SelfSimilarityIsMaximal(t *testing.T) {
	vectors := []Vector{
		{},
		{Cooperation: 100, Exploration: 100, Strategy: 100, Leadership: 100, Social: 100},
		{Cooperation: 50, Exploration: 25, Strategy: 75, Leadership: 10, Social: 90},
	}

	for _, v := range vectors {
		if got := Score(v, v); got != 100 {
			t.Errorf("Score(v, v) = %v, want 100 for %+v", got, v)
		}
	}
}

func TestScore_Symmetry(t *testing.T) {
	a := Vector{Cooperation: 80, Exploration: 20, Strategy: 65, Leadership: 40, Social: 55}
	b := Vector{Cooperation: 10, Exploration: 95, Strategy: 30, Leadership: 70, Social: 5}

	if Score(a, b) != Score(b, a) {
		t.Errorf("Score is not symmetric: Score(a,b)=%v Score(b,a)=%v", Score(a, b), Score(b, a))
	}
}

func TestScore_OppositeCornersScoreZero(t *testing.T) {
	a := Vector{}
	b := Vector{Cooperation: 100, Exploration: 100, Strategy: 100, Leadership: 100, Social: 100}

	if got := Score(a, b); got != 0 {
		t.Errorf("Score(origin, far corner) = %v, want 0", got)
	}
}

func TestScore_MonotonicInDistance(t *testing.T) {
	base := Vector{Cooperation: 50, Exploration: 50, Strategy: 50, Leadership: 50, Social: 50}
	near := Vector{Cooperation: 55, Exploration: 50, Strategy: 50, Leadership: 50, Social: 50}
	far := Vector{Cooperation: 90, Exploration: 50, Strategy: 50, Leadership: 50, Social: 50}

	if Score(base, near) <= Score(base, far) {
		t.Errorf("expected closer vector to score higher: near=%v far=%v",
			Score(base, near), Score(base, far))
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	corners := []Vector{
		{},
		{Cooperation: 100},
		{Cooperation: 100, Exploration: 100, Strategy: 100, Leadership: 100, Social: 100},
		{Exploration: 100, Leadership: 100},
	}

	for _, a := range corners {
		for _, b := range corners {
			got := Score(a, b)
			if got < 0 || got > 100 || math.IsNaN(got) {
				t.Errorf("Score(%+v, %+v) = %v, out of range", a, b, got)
			}
		}
	}
}

func TestVector_Validate(t *testing.T) {
	valid := Vector{Cooperation: 0, Exploration: 100, Strategy: 50, Leadership: 1, Social: 99.5}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on valid vector returned error: %v", err)
	}

	tests := []struct {
		name   string
		vector Vector
	}{
		{"negative dimension", Vector{Cooperation: -1}},
		{"above maximum", Vector{Social: 100.01}},
		{"NaN dimension", Vector{Strategy: math.NaN()}},
		{"infinite dimension", Vector{Leadership: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.vector.Validate(); err == nil {
				t.Errorf("Validate() accepted invalid vector %+v", tt.vector)
			}
		})
	}
}
