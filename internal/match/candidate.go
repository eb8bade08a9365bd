// Package match produces the ranked candidate list shown to a viewer: it
// caches one scored fetch per identity and re-derives the displayed
// ordering from live status without refetching.
package match

import (
	"context"
	"sort"

	"github.com/mkovalev/playsquad/internal/archetype"
	"github.com/mkovalev/playsquad/internal/status"
)

// ProfileSummary carries the display fields attached to each candidate.
type ProfileSummary struct {
	Nickname  string              `json:"nickname"`
	AvatarURL string              `json:"avatar_url"`
	Archetype archetype.Archetype `json:"archetype"`
}

// ScoredCandidate is one target scored against one viewer. Created per
// fetch, held in controller state, replaced wholesale on refetch.
type ScoredCandidate struct {
	TargetID   string         `json:"target_id"`
	FinalScore float64        `json:"final_score"`
	Profile    ProfileSummary `json:"profile"`
}

// CandidateSource produces the scored candidate list for a viewer.
type CandidateSource interface {
	Candidates(ctx context.Context, viewerID string) ([]ScoredCandidate, error)
}

// StatusReader resolves a user's displayed status. Satisfied by
// *status.Resolver.
type StatusReader interface {
	Effective(userID string) status.Status
}

// SortMode selects the ranking order of the derived list.
type SortMode string

const (
	// SortByScore orders by descending final score, with fetch order
	// preserved for ties.
	SortByScore SortMode = "score"

	// SortByOnline puts effectively-online candidates first, breaking
	// ties by descending final score.
	SortByOnline SortMode = "online"
)

// Options filter and order the derived list. MinScore and OnlineOnly
// compose; both are applied before sorting.
type Options struct {
	MinScore   float64
	OnlineOnly bool
	SortBy     SortMode
}

// Derive filters and sorts a scored candidate list. It is a pure
// re-derivation: candidates come from the cached fetch, connectivity from
// the status reader at call time, so a presence or status tick changes the
// output without a network round trip.
func Derive(candidates []ScoredCandidate, opts Options, statuses StatusReader) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.FinalScore < opts.MinScore {
			continue
		}
		if opts.OnlineOnly && statuses.Effective(c.TargetID) != status.Online {
			continue
		}
		out = append(out, c)
	}

	switch opts.SortBy {
	case SortByOnline:
		sort.SliceStable(out, func(i, j int) bool {
			iOnline := statuses.Effective(out[i].TargetID) == status.Online
			jOnline := statuses.Effective(out[j].TargetID) == status.Online
			if iOnline != jOnline {
				return iOnline
			}
			return out[i].FinalScore > out[j].FinalScore
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].FinalScore > out[j].FinalScore
		})
	}

	return out
}
