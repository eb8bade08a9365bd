// Package archetype holds the static play-style archetype catalog: the
// enumerated archetypes, their hand-tuned ideal trait vectors, and the
// compatibility classification between archetype pairs.
package archetype

import "github.com/mkovalev/playsquad/internal/traits"

// Archetype is a named play-style category a user is classified into after
// completing the trait assessment. The empty string means the assessment has
// not been completed.
type Archetype string

// The enumerated archetypes. The set is fixed; adding one requires a new
// ideal vector and compatibility entries, not code changes elsewhere.
const (
	Tiger   Archetype = "tiger"
	Lion    Archetype = "lion"
	Bear    Archetype = "bear"
	Wolf    Archetype = "wolf"
	Fox     Archetype = "fox"
	Owl     Archetype = "owl"
	Eagle   Archetype = "eagle"
	Dolphin Archetype = "dolphin"
	Otter   Archetype = "otter"
	Cat     Archetype = "cat"
	Dog     Archetype = "dog"
	Rabbit  Archetype = "rabbit"
	Deer    Archetype = "deer"
	Turtle  Archetype = "turtle"
	Peacock Archetype = "peacock"
)

// All returns every archetype in the catalog.
func All() []Archetype {
	return []Archetype{
		Tiger, Lion, Bear, Wolf, Fox, Owl, Eagle, Dolphin,
		Otter, Cat, Dog, Rabbit, Deer, Turtle, Peacock,
	}
}

// Valid reports whether a is one of the enumerated archetypes.
func (a Archetype) Valid() bool {
	_, ok := idealVectors[a]
	return ok
}

// idealVectors maps each archetype to its canonical trait vector
// (cooperation, exploration, strategy, leadership, social).
//
// The values are hand-tuned content: near-duplicate archetypes are pulled
// apart along one dominant axis (tiger and lion are both high-leadership,
// separated on cooperation; fox and owl are both high-strategy, separated
// on social and exploration; rabbit and deer are separated on social).
// Changing a number here changes product behavior, not engine correctness.
var idealVectors = map[Archetype]traits.Vector{
	Tiger:   {Cooperation: 35, Exploration: 70, Strategy: 60, Leadership: 85, Social: 45},
	Lion:    {Cooperation: 70, Exploration: 50, Strategy: 55, Leadership: 90, Social: 65},
	Bear:    {Cooperation: 75, Exploration: 40, Strategy: 50, Leadership: 60, Social: 50},
	Wolf:    {Cooperation: 85, Exploration: 55, Strategy: 70, Leadership: 65, Social: 60},
	Fox:     {Cooperation: 40, Exploration: 65, Strategy: 90, Leadership: 45, Social: 40},
	Owl:     {Cooperation: 50, Exploration: 35, Strategy: 95, Leadership: 40, Social: 25},
	Eagle:   {Cooperation: 25, Exploration: 90, Strategy: 55, Leadership: 55, Social: 30},
	Dolphin: {Cooperation: 80, Exploration: 75, Strategy: 40, Leadership: 35, Social: 85},
	Otter:   {Cooperation: 65, Exploration: 80, Strategy: 25, Leadership: 25, Social: 90},
	Cat:     {Cooperation: 30, Exploration: 55, Strategy: 45, Leadership: 30, Social: 35},
	Dog:     {Cooperation: 90, Exploration: 45, Strategy: 30, Leadership: 25, Social: 75},
	Rabbit:  {Cooperation: 60, Exploration: 50, Strategy: 35, Leadership: 15, Social: 55},
	Deer:    {Cooperation: 55, Exploration: 50, Strategy: 30, Leadership: 10, Social: 30},
	Turtle:  {Cooperation: 60, Exploration: 20, Strategy: 80, Leadership: 30, Social: 20},
	Peacock: {Cooperation: 45, Exploration: 60, Strategy: 40, Leadership: 55, Social: 95},
}

// VectorOf returns the ideal trait vector for an archetype. It is total
// over valid archetypes; an unknown archetype yields the zero vector.
func VectorOf(a Archetype) traits.Vector {
	return idealVectors[a]
}
