package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-match/internal/db"
	"github.com/jonathan/talent-match/internal/observability"
	"github.com/jonathan/talent-match/internal/types"
)

type fakeStore struct {
	vacancy    *types.Vacancy
	vacancyErr error
	candidates []*types.Candidate
	similar    []db.SimilarVacancy
	similarCap int
}

func (f *fakeStore) GetVacancy(_ context.Context, _ uuid.UUID) (*types.Vacancy, error) {
	return f.vacancy, f.vacancyErr
}

func (f *fakeStore) ListCandidates(_ context.Context) ([]*types.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeStore) FindSimilarVacancies(_ context.Context, _ uuid.UUID, limit int) ([]db.SimilarVacancy, error) {
	f.similarCap = limit
	return f.similar, nil
}

type fakeFilter struct {
	out []types.FilteredCandidate
}

func (f *fakeFilter) Filter(_ *types.Vacancy, _ []*types.Candidate) []types.FilteredCandidate {
	return f.out
}

type fakeScorer struct {
	out []types.PreScoreResult
}

func (f *fakeScorer) Score(_ *types.Vacancy, _ []types.FilteredCandidate) []types.PreScoreResult {
	return f.out
}

type fakeNeural struct {
	out   []types.NeuralRankedCandidate
	err   error
	delay time.Duration
}

func (f *fakeNeural) Rank(ctx context.Context, _ *types.Vacancy, _ []types.PreScoreResult, _ map[uuid.UUID]*types.Candidate) ([]types.NeuralRankedCandidate, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.out, f.err
}

type fakePostRank struct {
	out []types.LLMPostRankedCandidate
	err error
}

func (f *fakePostRank) Rank(_ context.Context, _ *types.Vacancy, _ []types.NeuralRankedCandidate, _ map[uuid.UUID]*types.Candidate) ([]types.LLMPostRankedCandidate, error) {
	return f.out, f.err
}

type fakeFuser struct {
	out []types.FinalScoredCandidate
}

func (f *fakeFuser) Combine(_ context.Context, _ uuid.UUID, _ []types.LLMPostRankedCandidate) []types.FinalScoredCandidate {
	return f.out
}

func candidatePool(n int) []*types.Candidate {
	out := make([]*types.Candidate, n)
	for i := range out {
		out[i] = &types.Candidate{ID: uuid.New(), ResumeText: "resume"}
	}
	return out
}

func TestRank_RunsFullFunnel(t *testing.T) {
	vacancy := &types.Vacancy{ID: uuid.New(), Title: "Backend Engineer"}
	candidates := candidatePool(3)
	winner := types.FinalScoredCandidate{CandidateID: candidates[0].ID, FinalScore: 0.9}

	ranker := NewRanker(
		&fakeStore{vacancy: vacancy, candidates: candidates},
		&fakeFilter{out: []types.FilteredCandidate{{Candidate: candidates[0]}, {Candidate: candidates[1]}}},
		&fakeScorer{out: []types.PreScoreResult{{CandidateID: candidates[0].ID, PreScore: 0.8}}},
		&fakeNeural{out: []types.NeuralRankedCandidate{{CandidateID: candidates[0].ID}}},
		&fakePostRank{out: []types.LLMPostRankedCandidate{{CandidateID: candidates[0].ID}}},
		&fakeFuser{out: []types.FinalScoredCandidate{winner}},
		Options{},
		nil,
	)

	result, err := ranker.Rank(context.Background(), vacancy.ID)
	require.NoError(t, err)

	assert.Equal(t, vacancy, result.Vacancy)
	assert.Equal(t, []types.FinalScoredCandidate{winner}, result.Candidates)
	assert.Equal(t, 3, result.PoolSize)
	assert.Equal(t, 2, result.FilteredSize)
	assert.Equal(t, 1, result.PreScoredSize)
	assert.Equal(t, 1, result.ShortlistSize)
}

func TestRank_UnknownVacancyFails(t *testing.T) {
	ranker := NewRanker(
		&fakeStore{vacancyErr: db.ErrNotFound},
		&fakeFilter{}, &fakeScorer{}, &fakeNeural{}, &fakePostRank{}, &fakeFuser{},
		Options{}, nil,
	)

	_, err := ranker.Rank(context.Background(), uuid.New())
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestRank_EmptyAfterFilterShortCircuits(t *testing.T) {
	vacancy := &types.Vacancy{ID: uuid.New()}
	neural := &fakeNeural{err: errors.New("must not be called")}

	ranker := NewRanker(
		&fakeStore{vacancy: vacancy, candidates: candidatePool(5)},
		&fakeFilter{out: []types.FilteredCandidate{}},
		&fakeScorer{}, neural, &fakePostRank{}, &fakeFuser{},
		Options{}, nil,
	)

	result, err := ranker.Rank(context.Background(), vacancy.ID)
	require.NoError(t, err)
	assert.NotNil(t, result.Candidates)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, 0, result.FilteredSize)
}

func TestRank_TimeoutYieldsInsufficientResults(t *testing.T) {
	vacancy := &types.Vacancy{ID: uuid.New()}
	candidates := candidatePool(1)

	ranker := NewRanker(
		&fakeStore{vacancy: vacancy, candidates: candidates},
		&fakeFilter{out: []types.FilteredCandidate{{Candidate: candidates[0]}}},
		&fakeScorer{out: []types.PreScoreResult{{CandidateID: candidates[0].ID}}},
		&fakeNeural{delay: 200 * time.Millisecond},
		&fakePostRank{}, &fakeFuser{},
		Options{Timeout: 10 * time.Millisecond},
		nil,
	)

	_, err := ranker.Rank(context.Background(), vacancy.ID)
	require.ErrorIs(t, err, ErrInsufficientResults)
}

func TestRank_StageErrorPropagates(t *testing.T) {
	vacancy := &types.Vacancy{ID: uuid.New()}
	candidates := candidatePool(1)
	stageErr := errors.New("provider exploded")

	ranker := NewRanker(
		&fakeStore{vacancy: vacancy, candidates: candidates},
		&fakeFilter{out: []types.FilteredCandidate{{Candidate: candidates[0]}}},
		&fakeScorer{out: []types.PreScoreResult{{CandidateID: candidates[0].ID}}},
		&fakeNeural{out: []types.NeuralRankedCandidate{{CandidateID: candidates[0].ID}}},
		&fakePostRank{err: stageErr},
		&fakeFuser{},
		Options{}, nil,
	)

	_, err := ranker.Rank(context.Background(), vacancy.ID)
	require.ErrorIs(t, err, stageErr)
}

func TestRank_VerbosePrinterLeavesRankingToCaller(t *testing.T) {
	vacancy := &types.Vacancy{ID: uuid.New(), Title: "Backend Engineer"}
	candidates := candidatePool(1)

	var out bytes.Buffer
	ranker := NewRanker(
		&fakeStore{vacancy: vacancy, candidates: candidates},
		&fakeFilter{out: []types.FilteredCandidate{{Candidate: candidates[0]}}},
		&fakeScorer{out: []types.PreScoreResult{{CandidateID: candidates[0].ID}}},
		&fakeNeural{out: []types.NeuralRankedCandidate{{CandidateID: candidates[0].ID}}},
		&fakePostRank{out: []types.LLMPostRankedCandidate{{CandidateID: candidates[0].ID}}},
		&fakeFuser{out: []types.FinalScoredCandidate{{CandidateID: candidates[0].ID, FinalScore: 0.9}}},
		Options{Printer: observability.NewPrinter(&out)},
		nil,
	)

	_, err := ranker.Rank(context.Background(), vacancy.ID)
	require.NoError(t, err)

	printed := out.String()
	assert.Contains(t, printed, "Vacancy")
	assert.Contains(t, printed, "Funnel")
	// The final list may still be re-ranked by the caller (reinforcement),
	// so the orchestrator never prints it.
	assert.NotContains(t, printed, "Ranking")
}

func TestSimilarVacancies_DefaultsLimit(t *testing.T) {
	store := &fakeStore{similar: []db.SimilarVacancy{{Title: "Backend Engineer"}}}
	ranker := NewRanker(store, &fakeFilter{}, &fakeScorer{}, &fakeNeural{}, &fakePostRank{}, &fakeFuser{}, Options{}, nil)

	out, err := ranker.SimilarVacancies(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 5, store.similarCap)
}
