// Package fusion combines the three score layers into one final ranking
// key and attaches cached explanations to the returned candidates.
package fusion

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/types"
)

// Fixed fusion weights. The weighted sum is the only ranking key; the
// cluster reinforcement bonus is an opt-in extension, not part of this
// formula.
const (
	PreScoreWeight   = 0.20
	NeuralRankWeight = 0.50
	LLMScoreWeight   = 0.30
)

// UnavailableExplanation is substituted when no cached explanation exists
// within its freshness window.
const UnavailableExplanation = "Explanation unavailable."

// ScoreCache is the slice of the store this layer reads and writes.
type ScoreCache interface {
	GetCacheEntries(ctx context.Context, vacancyID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]*types.CacheEntry, error)
	UpsertFinalScores(ctx context.Context, vacancyID, candidateID uuid.UUID, preScore, finalScore float64, now time.Time) error
}

// Fuser produces the final ordered result list.
type Fuser struct {
	cache  ScoreCache
	logger *zap.Logger
	now    func() time.Time
}

// NewFuser builds the fusion layer. A nil logger disables logging.
func NewFuser(cache ScoreCache, logger *zap.Logger) *Fuser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fuser{cache: cache, logger: logger, now: time.Now}
}

// Combine computes the final score for every post-ranked candidate, sorts
// descending, attaches cached explanations, and writes the full score tuple
// back to the cache best-effort. Cache failures never fail the ranking.
func (f *Fuser) Combine(ctx context.Context, vacancyID uuid.UUID, candidates []types.LLMPostRankedCandidate) []types.FinalScoredCandidate {
	if len(candidates) == 0 {
		return []types.FinalScoredCandidate{}
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.CandidateID)
	}

	cached, err := f.cache.GetCacheEntries(ctx, vacancyID, ids)
	if err != nil {
		f.logger.Warn("score cache read failed", zap.Error(err))
		cached = map[uuid.UUID]*types.CacheEntry{}
	}

	now := f.now()
	results := make([]types.FinalScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		final := Score(c.PreScore, c.NeuralRankScore, c.LLMScore)

		explanation, ok := cached[c.CandidateID].FreshExplanation(now)
		if !ok {
			explanation = UnavailableExplanation
		}

		results = append(results, types.FinalScoredCandidate{
			CandidateID:     c.CandidateID,
			PreScore:        c.PreScore,
			NeuralRankScore: c.NeuralRankScore,
			LLMScore:        c.LLMScore,
			FinalScore:      final,
			Explanation:     explanation,
		})

		if err := f.cache.UpsertFinalScores(ctx, vacancyID, c.CandidateID, c.PreScore, final, now); err != nil {
			f.logger.Warn("final score cache write failed",
				zap.String("candidate_id", c.CandidateID.String()),
				zap.Error(err))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	return results
}

// Score is the fixed weighted sum combining the three layers.
func Score(preScore, neuralRankScore, llmScore float64) float64 {
	return PreScoreWeight*preScore + NeuralRankWeight*neuralRankScore + LLMScoreWeight*llmScore
}

// ReinforcementFunc returns the cluster bonus for one candidate pair.
type ReinforcementFunc func(ctx context.Context, vacancyID, candidateID uuid.UUID) float64

// WithReinforcement re-sorts already-fused results after adding the
// cluster reinforcement bonus to each final score. Callers invoke this
// explicitly; the default ranking never includes the bonus.
func WithReinforcement(ctx context.Context, vacancyID uuid.UUID, results []types.FinalScoredCandidate, bonus ReinforcementFunc) []types.FinalScoredCandidate {
	if bonus == nil {
		return results
	}

	boosted := make([]types.FinalScoredCandidate, len(results))
	copy(boosted, results)
	for i := range boosted {
		boosted[i].FinalScore += bonus(ctx, vacancyID, boosted[i].CandidateID)
	}

	sort.SliceStable(boosted, func(i, j int) bool {
		return boosted[i].FinalScore > boosted[j].FinalScore
	})
	return boosted
}
