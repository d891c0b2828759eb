// Package prefilter applies deterministic eligibility rules over a
// candidate pool for one vacancy, before any vector or language-model
// scoring. Hard rule violations exclude a candidate; named exceptions
// downgrade to a soft penalty that later multiplies the pre-score.
package prefilter

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/types"
)

const (
	// SoftPenalty is the single penalty value applied when a soft rule
	// triggers. Penalties do not accumulate: one slot per candidate,
	// last triggered condition wins.
	SoftPenalty = 0.15

	// skillOverlapFloor is the minimum required-skill overlap below which
	// a candidate is excluded outright.
	skillOverlapFloor = 0.6

	// titleSimilarityFloor is the string similarity at or above which two
	// differing titles still count as the same role family.
	titleSimilarityFloor = 0.6

	// locationSimilarityFloor is the location string similarity below
	// which a non-remote vacancy excludes the candidate, unless both
	// resolve to the same continent.
	locationSimilarityFloor = 0.3
)

// Engine applies the eligibility rules for one vacancy over a pool.
type Engine struct {
	logger *zap.Logger
}

// NewEngine builds a filter engine. A nil logger disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Filter returns the candidates eligible for the vacancy with their soft
// penalties. Order follows the input pool; the pre-score layer sorts.
func (e *Engine) Filter(vacancy *types.Vacancy, pool []*types.Candidate) []types.FilteredCandidate {
	result := make([]types.FilteredCandidate, 0, len(pool))

	for _, candidate := range pool {
		penalty, ok := e.evaluate(vacancy, candidate)
		if !ok {
			continue
		}
		result = append(result, types.FilteredCandidate{
			Candidate:   candidate,
			SoftPenalty: penalty,
		})
	}

	e.logger.Debug("pre-filter complete",
		zap.String("vacancy_id", vacancy.ID.String()),
		zap.Int("pool", len(pool)),
		zap.Int("eligible", len(result)))

	return result
}

// evaluate runs every rule in order. The returned penalty is the value of
// the LAST soft condition that triggered; earlier triggers are overwritten.
func (e *Engine) evaluate(vacancy *types.Vacancy, candidate *types.Candidate) (penalty float64, ok bool) {
	// Empty resume: nothing downstream can score it.
	if strings.TrimSpace(candidate.ResumeText) == "" {
		return 0, false
	}

	// Required skills
	overlap := similarity.SkillOverlap(vacancy.RequiredSkills, similarity.SkillSet(candidate.Skills))
	switch {
	case overlap >= 1:
		// full coverage, no penalty
	case overlap >= skillOverlapFloor:
		penalty = SoftPenalty
	default:
		return 0, false
	}

	// Industry
	if !strings.EqualFold(strings.TrimSpace(vacancy.Industry), strings.TrimSpace(candidate.Industry)) {
		if !industriesRelated(vacancy.Industry, candidate.Industry) {
			return 0, false
		}
		penalty = SoftPenalty
	}

	// Title
	if !strings.EqualFold(strings.TrimSpace(vacancy.Title), strings.TrimSpace(candidate.Title)) {
		if !similarity.TitlesRelated(vacancy.Title, candidate.Title, titleSimilarityFloor) {
			return 0, false
		}
		penalty = SoftPenalty
	}

	// Location: only enforced for on-site vacancies.
	if !vacancy.IsRemote() {
		if similarity.Text(vacancy.Location, candidate.Location) < locationSimilarityFloor {
			if !sameContinent(vacancy.Location, candidate.Location) {
				return 0, false
			}
			penalty = SoftPenalty
		}
	}

	return penalty, true
}
