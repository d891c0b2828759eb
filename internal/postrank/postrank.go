// Package postrank computes the deepest language-model judgment for the
// final shortlist: one batched model call scores many candidates at once
// and produces a short natural-language explanation per candidate.
package postrank

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/llm"
	"github.com/jonathan/talent-match/internal/prompts"
	"github.com/jonathan/talent-match/internal/schemas"
	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/types"
)

const (
	// MaxBatchSize bounds how many candidates share one model call.
	MaxBatchSize = 20

	// PlaceholderExplanation is attached when the model omits an
	// explanation. Nothing beyond this placeholder is ever fabricated.
	PlaceholderExplanation = "No explanation provided."

	// defaultBatchDelay is the pause between sequential batch calls to
	// respect provider rate limits.
	defaultBatchDelay = 2 * time.Second
)

// ScoreCache is the slice of the store this layer reads and writes.
type ScoreCache interface {
	GetCacheEntries(ctx context.Context, vacancyID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]*types.CacheEntry, error)
	UpsertLLMResult(ctx context.Context, vacancyID, candidateID uuid.UUID, score float64, explanation string, now time.Time) error
}

// batchItem is one element of the model's JSON array response.
type batchItem struct {
	CandidateID string  `json:"candidate_id"`
	LLMScore    float64 `json:"llm_score"`
	Explanation string  `json:"explanation"`
}

// Ranker runs the batched judgment calls.
type Ranker struct {
	client     llm.Client
	cache      ScoreCache
	retry      llm.RetryPolicy
	batchDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewRanker builds a post-rank layer. A nil logger disables logging.
func NewRanker(client llm.Client, cache ScoreCache, retry llm.RetryPolicy, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{
		client:     client,
		cache:      cache,
		retry:      retry,
		batchDelay: defaultBatchDelay,
		logger:     logger,
		now:        time.Now,
	}
}

// SetBatchDelay overrides the pause between sequential batch calls.
// Non-positive durations are ignored.
func (r *Ranker) SetBatchDelay(d time.Duration) {
	if d > 0 {
		r.batchDelay = d
	}
}

// Rank produces llm_score and an explanation for every neural-ranked
// candidate, reusing cached judgments younger than seven days and batching
// the rest into as few model calls as possible. A batch whose response
// cannot be parsed drops its members; other batches are unaffected.
func (r *Ranker) Rank(ctx context.Context, vacancy *types.Vacancy, shortlist []types.NeuralRankedCandidate, pool map[uuid.UUID]*types.Candidate) ([]types.LLMPostRankedCandidate, error) {
	if len(shortlist) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(shortlist))
	for _, c := range shortlist {
		ids = append(ids, c.CandidateID)
	}

	cached, err := r.cache.GetCacheEntries(ctx, vacancy.ID, ids)
	if err != nil {
		r.logger.Warn("score cache read failed", zap.Error(err))
		cached = map[uuid.UUID]*types.CacheEntry{}
	}

	now := r.now()
	scores := make(map[uuid.UUID]float64, len(shortlist))
	var misses []types.NeuralRankedCandidate

	for _, c := range shortlist {
		if score, hit := cached[c.CandidateID].FreshLLMScore(now); hit {
			scores[c.CandidateID] = score
			continue
		}
		misses = append(misses, c)
	}

	for start := 0; start < len(misses); start += MaxBatchSize {
		if start > 0 {
			// Fixed delay between sequential batch calls.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.batchDelay):
			}
		}

		end := min(start+MaxBatchSize, len(misses))
		batch := misses[start:end]

		results, err := r.scoreBatch(ctx, vacancy, batch, pool)
		if err != nil {
			r.logger.Warn("batch scoring failed, dropping batch members",
				zap.String("vacancy_id", vacancy.ID.String()),
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
			continue
		}

		for id, item := range results {
			scores[id] = item.LLMScore
			if err := r.cache.UpsertLLMResult(ctx, vacancy.ID, id, item.LLMScore, item.Explanation, now); err != nil {
				r.logger.Warn("score cache write failed", zap.Error(err))
			}
		}
	}

	out := make([]types.LLMPostRankedCandidate, 0, len(shortlist))
	for _, c := range shortlist {
		score, ok := scores[c.CandidateID]
		if !ok {
			continue
		}
		out = append(out, types.LLMPostRankedCandidate{
			CandidateID:     c.CandidateID,
			PreScore:        c.PreScore,
			NeuralRankScore: c.NeuralRankScore,
			LLMScore:        score,
		})
	}

	r.logger.Debug("llm post-rank complete",
		zap.String("vacancy_id", vacancy.ID.String()),
		zap.Int("in", len(shortlist)),
		zap.Int("cached", len(shortlist)-len(misses)),
		zap.Int("out", len(out)))

	return out, nil
}

// scoreBatch issues one combined model call for a batch and returns the
// validated per-candidate results keyed by id.
func (r *Ranker) scoreBatch(ctx context.Context, vacancy *types.Vacancy, batch []types.NeuralRankedCandidate, pool map[uuid.UUID]*types.Candidate) (map[uuid.UUID]batchItem, error) {
	var blocks string
	for _, c := range batch {
		candidate, ok := pool[c.CandidateID]
		if !ok {
			return nil, fmt.Errorf("candidate %s missing from pool", c.CandidateID)
		}
		blocks += fmt.Sprintf("Candidate %s:\n\"\"\"\n%s\n\"\"\"\n\n", c.CandidateID, candidate.ResumeText)
	}

	template := prompts.MustGet("matching.json", "batch-score")
	prompt := prompts.Format(template, map[string]string{
		"VacancyText":     vacancy.Description,
		"CandidateBlocks": blocks,
	})

	var raw string
	err := llm.WithRetry(ctx, r.retry, func() error {
		var genErr error
		raw, genErr = r.client.GenerateJSON(ctx, prompt, llm.TierStandard)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	items, err := parseBatchResponse(raw)
	if err != nil {
		return nil, err
	}

	results := make(map[uuid.UUID]batchItem, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item.CandidateID)
		if err != nil {
			// An invented id is ignored; real candidates it displaced are
			// simply absent and get dropped.
			r.logger.Warn("batch response contained unknown candidate id",
				zap.String("candidate_id", item.CandidateID))
			continue
		}

		item.LLMScore = similarity.Clamp01(item.LLMScore)
		if item.Explanation == "" {
			item.Explanation = PlaceholderExplanation
		}
		results[id] = item
	}

	return results, nil
}

// parseBatchResponse parses the model's JSON array, retrying once on the
// fenced-code-block recovery path before giving up on the batch.
func parseBatchResponse(raw string) ([]batchItem, error) {
	candidates := []string{raw, llm.CleanJSONBlock(raw)}

	var lastErr error
	for _, text := range candidates {
		if err := schemas.Validate(schemas.BatchScores, []byte(text)); err != nil {
			lastErr = err
			continue
		}

		var items []batchItem
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			lastErr = err
			continue
		}
		return items, nil
	}

	return nil, fmt.Errorf("failed to parse batch response: %w", lastErr)
}
