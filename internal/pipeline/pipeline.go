// Package pipeline provides the high-level orchestration for candidate
// ranking: pre-filter, vector pre-score, pairwise neural rank, batched LLM
// post-rank, and weighted fusion, in that order. Each stage narrows the
// field before the next, more expensive stage runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/db"
	"github.com/jonathan/talent-match/internal/observability"
	"github.com/jonathan/talent-match/internal/types"
)

// ErrInsufficientResults is returned when the funnel cannot finish inside
// the configured deadline. Partial stage output is never returned; callers
// retry or raise the timeout.
var ErrInsufficientResults = errors.New("ranking did not complete in time: insufficient results")

// Store is the persistence surface the orchestrator reads from.
type Store interface {
	GetVacancy(ctx context.Context, id uuid.UUID) (*types.Vacancy, error)
	ListCandidates(ctx context.Context) ([]*types.Candidate, error)
	FindSimilarVacancies(ctx context.Context, id uuid.UUID, limit int) ([]db.SimilarVacancy, error)
}

// PreFilter removes candidates that cannot plausibly match a vacancy.
type PreFilter interface {
	Filter(vacancy *types.Vacancy, pool []*types.Candidate) []types.FilteredCandidate
}

// PreScorer orders filtered candidates by stored-vector similarity.
type PreScorer interface {
	Score(vacancy *types.Vacancy, filtered []types.FilteredCandidate) []types.PreScoreResult
}

// NeuralRanker scores each pre-scored candidate pairwise against the vacancy.
type NeuralRanker interface {
	Rank(ctx context.Context, vacancy *types.Vacancy, preScored []types.PreScoreResult, pool map[uuid.UUID]*types.Candidate) ([]types.NeuralRankedCandidate, error)
}

// PostRanker runs the deep batched judgment over the shortlist.
type PostRanker interface {
	Rank(ctx context.Context, vacancy *types.Vacancy, shortlist []types.NeuralRankedCandidate, pool map[uuid.UUID]*types.Candidate) ([]types.LLMPostRankedCandidate, error)
}

// Fuser combines the three stage scores into the final ranking.
type Fuser interface {
	Combine(ctx context.Context, vacancyID uuid.UUID, candidates []types.LLMPostRankedCandidate) []types.FinalScoredCandidate
}

// Options configures one Ranker.
type Options struct {
	// Timeout bounds a whole Rank call. Zero disables the deadline.
	Timeout time.Duration
	// Printer receives human-readable stage output when verbose mode is on.
	Printer *observability.Printer
}

// Ranker runs the full candidate ranking funnel for one vacancy at a time.
type Ranker struct {
	store     Store
	prefilter PreFilter
	prescorer PreScorer
	neural    NeuralRanker
	postrank  PostRanker
	fuser     Fuser
	opts      Options
	logger    *zap.Logger
}

// NewRanker wires the funnel stages into an orchestrator.
func NewRanker(store Store, prefilter PreFilter, prescorer PreScorer, neural NeuralRanker, postrank PostRanker, fuser Fuser, opts Options, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{
		store:     store,
		prefilter: prefilter,
		prescorer: prescorer,
		neural:    neural,
		postrank:  postrank,
		fuser:     fuser,
		opts:      opts,
		logger:    logger,
	}
}

// RankResult is the output of one full funnel run.
type RankResult struct {
	Vacancy    *types.Vacancy
	Candidates []types.FinalScoredCandidate

	// Stage sizes, for funnel reporting.
	PoolSize      int
	FilteredSize  int
	PreScoredSize int
	ShortlistSize int
}

// Rank executes the funnel for one vacancy against the whole candidate pool.
// An unknown vacancy fails immediately with db.ErrNotFound; a pool that
// empties out at any stage short-circuits to an empty (non-nil) result.
func (r *Ranker) Rank(ctx context.Context, vacancyID uuid.UUID) (*RankResult, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	result, err := r.rank(ctx, vacancyID)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w (after %s)", ErrInsufficientResults, r.opts.Timeout)
	}
	return result, err
}

func (r *Ranker) rank(ctx context.Context, vacancyID uuid.UUID) (*RankResult, error) {
	started := time.Now()

	vacancy, err := r.store.GetVacancy(ctx, vacancyID)
	if err != nil {
		return nil, err
	}
	if r.opts.Printer != nil {
		r.opts.Printer.PrintVacancy(vacancy)
	}

	candidates, err := r.store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}

	result := &RankResult{
		Vacancy:    vacancy,
		Candidates: []types.FinalScoredCandidate{},
		PoolSize:   len(candidates),
	}

	pool := make(map[uuid.UUID]*types.Candidate, len(candidates))
	for _, c := range candidates {
		pool[c.ID] = c
	}

	filtered := r.prefilter.Filter(vacancy, candidates)
	result.FilteredSize = len(filtered)
	if len(filtered) == 0 {
		r.logger.Info("no candidates survived pre-filtering",
			zap.String("vacancy_id", vacancyID.String()))
		return result, nil
	}

	preScored := r.prescorer.Score(vacancy, filtered)
	result.PreScoredSize = len(preScored)

	shortlist, err := r.neural.Rank(ctx, vacancy, preScored, pool)
	if err != nil {
		return nil, fmt.Errorf("neural ranking failed: %w", err)
	}
	result.ShortlistSize = len(shortlist)
	if len(shortlist) == 0 {
		return result, nil
	}

	postRanked, err := r.postrank.Rank(ctx, vacancy, shortlist, pool)
	if err != nil {
		return nil, fmt.Errorf("post-ranking failed: %w", err)
	}

	result.Candidates = r.fuser.Combine(ctx, vacancyID, postRanked)

	// The final list is printed by the caller, which may still re-rank it
	// with the cluster reinforcement bonus.
	if r.opts.Printer != nil {
		r.opts.Printer.PrintFunnel(result.FilteredSize, result.PreScoredSize, result.ShortlistSize, len(result.Candidates))
	}

	r.logger.Info("ranking complete",
		zap.String("vacancy_id", vacancyID.String()),
		zap.Int("pool", result.PoolSize),
		zap.Int("final", len(result.Candidates)),
		zap.Duration("elapsed", time.Since(started)))

	return result, nil
}

// SimilarVacancies returns the closest other vacancies by combined-embedding
// cosine similarity.
func (r *Ranker) SimilarVacancies(ctx context.Context, vacancyID uuid.UUID, limit int) ([]db.SimilarVacancy, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.store.FindSimilarVacancies(ctx, vacancyID, limit)
}
