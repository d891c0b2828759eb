// Package prescore computes vector-similarity compatibility scores for a
// pre-filtered candidate pool and returns the top candidates for neural
// re-ranking.
package prescore

import (
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/types"
)

// TopN is the number of candidates the pre-score layer hands to the neural
// rank layer.
const TopN = 50

// Scorer computes pre-scores from stored embeddings. No network calls:
// every vector it needs was produced upstream.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer builds a pre-score layer. A nil logger disables logging.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// Score computes the penalized pre-score for every filtered candidate and
// returns the top TopN sorted descending. An empty filtered set returns an
// empty slice, not an error.
func (s *Scorer) Score(vacancy *types.Vacancy, filtered []types.FilteredCandidate) []types.PreScoreResult {
	results := make([]types.PreScoreResult, 0, len(filtered))

	for _, fc := range filtered {
		c := fc.Candidate

		// Meta channel compares title/skills-level embeddings, content
		// channel compares description against resume. The combined base
		// score is the mean of the two channels.
		metaSim := similarity.Clamp01(similarity.Cosine(vacancy.TitleEmbedding, c.MetaEmbedding))
		contentSim := similarity.Clamp01(similarity.Cosine(vacancy.DescriptionEmbedding, c.ContentEmbedding))
		base := (metaSim + contentSim) / 2

		// A soft penalty can only reduce the score, never increase it.
		score := similarity.Clamp01(base * (1 - fc.SoftPenalty))

		results = append(results, types.PreScoreResult{
			CandidateID:       c.ID,
			MetaSimilarity:    metaSim,
			ContentSimilarity: contentSim,
			PreScore:          score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PreScore > results[j].PreScore
	})

	if len(results) > TopN {
		results = results[:TopN]
	}

	s.logger.Debug("pre-score complete",
		zap.String("vacancy_id", vacancy.ID.String()),
		zap.Int("scored", len(filtered)),
		zap.Int("kept", len(results)))

	return results
}
