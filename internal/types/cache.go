//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Freshness windows for cached score fields. A field older than its window
// is treated as absent and triggers recomputation.
const (
	ScoreFreshness       = 7 * 24 * time.Hour
	ExplanationFreshness = 30 * 24 * time.Hour
)

// CacheEntry is the persisted score record for one (vacancy, candidate)
// pair. Every field carries its own write timestamp because different
// pipeline layers own different fields and update them independently.
type CacheEntry struct {
	VacancyID   uuid.UUID `json:"vacancy_id"`
	CandidateID uuid.UUID `json:"candidate_id"`

	NeuralRankScore *float64   `json:"neural_rank_score,omitempty"`
	NeuralUpdatedAt *time.Time `json:"neural_updated_at,omitempty"`

	LLMScore     *float64   `json:"llm_score,omitempty"`
	LLMUpdatedAt *time.Time `json:"llm_updated_at,omitempty"`

	Explanation          *string    `json:"explanation,omitempty"`
	ExplanationUpdatedAt *time.Time `json:"explanation_updated_at,omitempty"`

	PreScore       *float64   `json:"pre_score,omitempty"`
	FinalScore     *float64   `json:"final_score,omitempty"`
	FinalUpdatedAt *time.Time `json:"final_updated_at,omitempty"`
}

// FreshNeuralScore returns the cached neural rank score if it was written
// within the score freshness window.
func (e *CacheEntry) FreshNeuralScore(now time.Time) (float64, bool) {
	if e == nil || e.NeuralRankScore == nil || e.NeuralUpdatedAt == nil {
		return 0, false
	}
	if now.Sub(*e.NeuralUpdatedAt) > ScoreFreshness {
		return 0, false
	}
	return *e.NeuralRankScore, true
}

// FreshLLMScore returns the cached llm score if it was written within the
// score freshness window.
func (e *CacheEntry) FreshLLMScore(now time.Time) (float64, bool) {
	if e == nil || e.LLMScore == nil || e.LLMUpdatedAt == nil {
		return 0, false
	}
	if now.Sub(*e.LLMUpdatedAt) > ScoreFreshness {
		return 0, false
	}
	return *e.LLMScore, true
}

// FreshExplanation returns the cached explanation if it was written within
// the explanation freshness window. Explanations age out on a longer
// schedule than scores.
func (e *CacheEntry) FreshExplanation(now time.Time) (string, bool) {
	if e == nil || e.Explanation == nil || e.ExplanationUpdatedAt == nil {
		return "", false
	}
	if now.Sub(*e.ExplanationUpdatedAt) > ExplanationFreshness {
		return "", false
	}
	return *e.Explanation, true
}
