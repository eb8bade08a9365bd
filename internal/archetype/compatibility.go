package archetype

// Level classifies how well two archetypes pair up.
type Level string

const (
	LevelBest        Level = "best"
	LevelGood        Level = "good"
	LevelNeutral     Level = "neutral"
	LevelChallenging Level = "challenging"

	// LevelUnknown is returned for any pair without an explicit entry,
	// including an archetype compared with itself. A lookup never fails.
	LevelUnknown Level = "unknown"
)

// Score adjustments applied by ApplyCompatibility. Additive then clamped,
// never multiplicative, so extreme base scores cannot compound.
const (
	identicalBonus     = 3
	bestBonus          = 7
	goodBonus          = 5
	challengingPenalty = 3
)

// pairKey is a canonically ordered archetype pair. The compatibility
// relation is symmetric; ordering the key before insert and lookup means
// both query directions hit the same entry.
type pairKey struct {
	lo, hi Archetype
}

func keyFor(a, b Archetype) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type pairEntry struct {
	a, b  Archetype
	level Level
}

// compatibilityEntries is the hand-tuned pairing table. Pairs absent from
// the table are LevelUnknown. Neutral pairs are listed explicitly where the
// pairing was reviewed and judged neither a boost nor a penalty.
var compatibilityEntries = []pairEntry{
	// Complementary pairings.
	{Tiger, Bear, LevelBest},
	{Lion, Wolf, LevelBest},
	{Fox, Turtle, LevelBest},
	{Dolphin, Dog, LevelBest},
	{Owl, Eagle, LevelBest},

	{Tiger, Eagle, LevelGood},
	{Tiger, Fox, LevelGood},
	{Lion, Peacock, LevelGood},
	{Wolf, Dog, LevelGood},
	{Owl, Fox, LevelGood},
	{Bear, Rabbit, LevelGood},
	{Deer, Rabbit, LevelGood},
	{Otter, Peacock, LevelGood},
	{Dolphin, Otter, LevelGood},
	{Cat, Fox, LevelGood},
	{Bear, Dog, LevelGood},

	// Pairings that tend to clash: two dominant leaders, or a performer
	// paired with a strongly solitary style.
	{Tiger, Lion, LevelChallenging},
	{Tiger, Cat, LevelChallenging},
	{Tiger, Peacock, LevelChallenging},
	{Owl, Otter, LevelChallenging},
	{Turtle, Peacock, LevelChallenging},
	{Eagle, Dog, LevelChallenging},
	{Cat, Dog, LevelChallenging},

	{Bear, Turtle, LevelNeutral},
	{Deer, Turtle, LevelNeutral},
	{Rabbit, Cat, LevelNeutral},
	{Wolf, Fox, LevelNeutral},
}

var compatibility = func() map[pairKey]Level {
	m := make(map[pairKey]Level, len(compatibilityEntries))
	for _, e := range compatibilityEntries {
		m[keyFor(e.a, e.b)] = e.level
	}
	return m
}()

// CompatibilityOf returns the compatibility classification for a pair of
// archetypes. The relation is symmetric and total: any pair without an
// explicit table entry, including a == b, yields LevelUnknown.
func CompatibilityOf(a, b Archetype) Level {
	if level, ok := compatibility[keyFor(a, b)]; ok {
		return level
	}
	return LevelUnknown
}

// ApplyCompatibility adjusts a base similarity score by the compatibility
// of the viewer and target archetypes. An empty archetype on either side
// means the trait assessment is incomplete and the base score passes
// through unchanged. Identical archetypes get a small bonus before the
// table is consulted. The result is clamped to [0,100].
func ApplyCompatibility(base float64, viewer, target Archetype) float64 {
	if viewer == "" || target == "" {
		return base
	}
	if viewer == target {
		return clampScore(base + identicalBonus)
	}

	switch CompatibilityOf(viewer, target) {
	case LevelBest:
		return clampScore(base + bestBonus)
	case LevelGood:
		return clampScore(base + goodBonus)
	case LevelChallenging:
		return clampScore(base - challengingPenalty)
	default:
		// Neutral and unknown leave the score unchanged.
		return base
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
