//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/google/uuid"

// FilteredCandidate is a candidate that survived pre-filtering, together
// with any soft penalty the filter assigned. Only one penalty slot is
// tracked per candidate; when several soft conditions trigger, the last
// one evaluated wins. Penalties multiply the pre-score by (1 - penalty).
type FilteredCandidate struct {
	Candidate   *Candidate
	SoftPenalty float64
}

// PreScoreResult holds the vector-similarity score for one candidate.
// Transient; recomputed per request.
type PreScoreResult struct {
	CandidateID       uuid.UUID `json:"candidate_id"`
	MetaSimilarity    float64   `json:"meta_similarity"`
	ContentSimilarity float64   `json:"content_similarity"`
	PreScore          float64   `json:"pre_score"`
}

// NeuralRankedCandidate carries the pre-score forward and adds the pairwise
// language-model comparison score.
type NeuralRankedCandidate struct {
	CandidateID     uuid.UUID `json:"candidate_id"`
	PreScore        float64   `json:"pre_score"`
	NeuralRankScore float64   `json:"neural_rank_score"`
}

// LLMPostRankedCandidate adds the deep language-model judgment score.
type LLMPostRankedCandidate struct {
	CandidateID     uuid.UUID `json:"candidate_id"`
	PreScore        float64   `json:"pre_score"`
	NeuralRankScore float64   `json:"neural_rank_score"`
	LLMScore        float64   `json:"llm_score"`
}

// FinalScoredCandidate is the entity returned to callers of Rank.
type FinalScoredCandidate struct {
	CandidateID     uuid.UUID `json:"candidate_id"`
	PreScore        float64   `json:"pre_score"`
	NeuralRankScore float64   `json:"neural_rank_score"`
	LLMScore        float64   `json:"llm_score"`
	FinalScore      float64   `json:"final_score"`
	Explanation     string    `json:"explanation"`
}
