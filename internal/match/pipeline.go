package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mkovalev/playsquad/internal/archetype"
	"github.com/mkovalev/playsquad/internal/storage/repository"
	"github.com/mkovalev/playsquad/internal/traits"
)

// ErrViewerProfileMissing is returned when the viewer has no matchmaking
// profile yet; there is nothing to score against.
var ErrViewerProfileMissing = errors.New("viewer has no matchmaking profile")

// Pipeline is a storage-backed CandidateSource: it scores every other
// profile against the viewer's trait vector and applies the archetype
// compatibility adjustment.
type Pipeline struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewPipeline creates a scoring pipeline over the profile repository.
func NewPipeline(profiles repository.ProfileRepository, logger *slog.Logger) (*Pipeline, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{profiles: profiles, logger: logger}, nil
}

// Candidates scores every other profile against the viewer and returns
// them ordered by descending final score. Candidates with malformed trait
// vectors are rejected and skipped: an out-of-range vector is an upstream
// bug, not something to clamp quietly into the ranking.
func (p *Pipeline) Candidates(ctx context.Context, viewerID string) ([]ScoredCandidate, error) {
	viewer, err := p.profiles.Get(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load viewer profile: %w", err)
	}
	if viewer == nil {
		return nil, fmt.Errorf("%w: %s", ErrViewerProfileMissing, viewerID)
	}
	if err := viewer.Vector.Validate(); err != nil {
		return nil, fmt.Errorf("viewer %s has malformed trait vector: %w", viewerID, err)
	}

	viewerArch := archetype.Archetype(viewer.Archetype)
	if viewerArch != "" && !viewerArch.Valid() {
		p.logger.Warn("viewer has unknown archetype; scoring without compatibility",
			"viewer_id", viewerID, "archetype", viewer.Archetype)
		viewerArch = ""
	}

	others, err := p.profiles.ListOthers(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list candidate profiles: %w", err)
	}

	candidates := make([]ScoredCandidate, 0, len(others))
	for _, other := range others {
		if err := other.Vector.Validate(); err != nil {
			p.logger.Warn("rejecting candidate with malformed trait vector",
				"target_id", other.UserID, "error", err)
			continue
		}

		targetArch := archetype.Archetype(other.Archetype)
		if targetArch != "" && !targetArch.Valid() {
			p.logger.Warn("candidate has unknown archetype; treating as incomplete",
				"target_id", other.UserID, "archetype", other.Archetype)
			targetArch = ""
		}

		base := traits.Score(viewer.Vector, other.Vector)
		final := archetype.ApplyCompatibility(base, viewerArch, targetArch)

		candidates = append(candidates, ScoredCandidate{
			TargetID:   other.UserID,
			FinalScore: final,
			Profile: ProfileSummary{
				Nickname:  other.Nickname,
				AvatarURL: other.AvatarURL,
				Archetype: targetArch,
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})

	return candidates, nil
}
