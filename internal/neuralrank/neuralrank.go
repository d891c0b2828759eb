// Package neuralrank re-scores the pre-score shortlist with a pairwise
// language-model comparison between the vacancy text and each candidate's
// resume. Scores are cached per (vacancy, candidate) pair for seven days.
package neuralrank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-match/internal/llm"
	"github.com/jonathan/talent-match/internal/prompts"
	"github.com/jonathan/talent-match/internal/types"
)

// TopN is the number of candidates the neural rank layer hands to the LLM
// post-rank layer.
const TopN = 10

// maxConcurrent bounds the per-candidate scorer calls in flight at once.
const maxConcurrent = 5

// ScoreCache is the slice of the store this layer reads and writes.
type ScoreCache interface {
	GetCacheEntries(ctx context.Context, vacancyID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]*types.CacheEntry, error)
	UpsertNeuralScore(ctx context.Context, vacancyID, candidateID uuid.UUID, score float64, now time.Time) error
}

// Ranker computes pairwise comparison scores for a shortlist.
type Ranker struct {
	client llm.Client
	cache  ScoreCache
	retry  llm.RetryPolicy
	logger *zap.Logger
	now    func() time.Time
}

// NewRanker builds a neural rank layer. A nil logger disables logging.
func NewRanker(client llm.Client, cache ScoreCache, retry llm.RetryPolicy, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{
		client: client,
		cache:  cache,
		retry:  retry,
		logger: logger,
		now:    time.Now,
	}
}

// Rank scores every pre-scored candidate against the vacancy and returns
// the top TopN sorted descending by neural rank score, each carrying its
// pre-score forward. A candidate whose scorer call fails is dropped, not
// fatal to the batch.
func (r *Ranker) Rank(ctx context.Context, vacancy *types.Vacancy, preScored []types.PreScoreResult, pool map[uuid.UUID]*types.Candidate) ([]types.NeuralRankedCandidate, error) {
	if len(preScored) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(preScored))
	for _, ps := range preScored {
		ids = append(ids, ps.CandidateID)
	}

	cached, err := r.cache.GetCacheEntries(ctx, vacancy.ID, ids)
	if err != nil {
		// A cache read failure costs recomputation, never the ranking.
		r.logger.Warn("score cache read failed", zap.Error(err))
		cached = map[uuid.UUID]*types.CacheEntry{}
	}

	now := r.now()
	template := prompts.MustGet("matching.json", "pairwise-score")

	// Each goroutine writes only its own slot; results are merged after
	// the group finishes.
	results := make([]*types.NeuralRankedCandidate, len(preScored))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, ps := range preScored {
		g.Go(func() error {
			candidate, ok := pool[ps.CandidateID]
			if !ok {
				r.logger.Warn("candidate missing from pool", zap.String("candidate_id", ps.CandidateID.String()))
				return nil
			}

			if score, hit := cached[ps.CandidateID].FreshNeuralScore(now); hit {
				results[i] = &types.NeuralRankedCandidate{
					CandidateID:     ps.CandidateID,
					PreScore:        ps.PreScore,
					NeuralRankScore: score,
				}
				return nil
			}

			score, err := r.scorePair(gctx, vacancy, candidate, template)
			if err != nil {
				r.logger.Warn("pairwise scoring failed, dropping candidate",
					zap.String("candidate_id", ps.CandidateID.String()),
					zap.Error(err))
				return nil
			}

			if err := r.cache.UpsertNeuralScore(gctx, vacancy.ID, ps.CandidateID, score, now); err != nil {
				r.logger.Warn("score cache write failed", zap.Error(err))
			}

			results[i] = &types.NeuralRankedCandidate{
				CandidateID:     ps.CandidateID,
				PreScore:        ps.PreScore,
				NeuralRankScore: score,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("neural rank failed: %w", err)
	}

	ranked := make([]types.NeuralRankedCandidate, 0, len(results))
	for _, res := range results {
		if res != nil {
			ranked = append(ranked, *res)
		}
	}

	sortByNeuralScore(ranked)
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}

	r.logger.Debug("neural rank complete",
		zap.String("vacancy_id", vacancy.ID.String()),
		zap.Int("in", len(preScored)),
		zap.Int("out", len(ranked)))

	return ranked, nil
}

// scorePair asks the model for a single functional-similarity float and
// clamps it into [0, 1]. Rate limits are retried with backoff.
func (r *Ranker) scorePair(ctx context.Context, vacancy *types.Vacancy, candidate *types.Candidate, template string) (float64, error) {
	prompt := prompts.Format(template, map[string]string{
		"VacancyText": vacancy.Description,
		"ResumeText":  candidate.ResumeText,
	})

	var raw string
	err := llm.WithRetry(ctx, r.retry, func() error {
		var genErr error
		raw, genErr = r.client.GenerateContent(ctx, prompt, llm.TierLite)
		return genErr
	})
	if err != nil {
		return 0, err
	}

	return llm.ParseScore(raw)
}

func sortByNeuralScore(ranked []types.NeuralRankedCandidate) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NeuralRankScore > ranked[j].NeuralRankScore
	})
}
