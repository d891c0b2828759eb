package fusion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-match/internal/types"
)

type fakeCache struct {
	entries  map[uuid.UUID]*types.CacheEntry
	writes   int
	readErr  error
	writeErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[uuid.UUID]*types.CacheEntry{}}
}

func (f *fakeCache) GetCacheEntries(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*types.CacheEntry, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := map[uuid.UUID]*types.CacheEntry{}
	for _, id := range ids {
		if e, ok := f.entries[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (f *fakeCache) UpsertFinalScores(_ context.Context, _, _ uuid.UUID, _, _ float64, _ time.Time) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	return nil
}

func TestScore_ExactFormula(t *testing.T) {
	assert.InDelta(t, 0.20*0.5+0.50*0.8+0.30*0.6, Score(0.5, 0.8, 0.6), 1e-12)
	assert.InDelta(t, 0.0, Score(0, 0, 0), 1e-12)
	assert.InDelta(t, 1.0, Score(1, 1, 1), 1e-12)
}

func TestCombine_SortsAndAppliesFormula(t *testing.T) {
	cache := newFakeCache()
	fuser := NewFuser(cache, nil)

	weak := types.LLMPostRankedCandidate{CandidateID: uuid.New(), PreScore: 0.2, NeuralRankScore: 0.3, LLMScore: 0.1}
	strong := types.LLMPostRankedCandidate{CandidateID: uuid.New(), PreScore: 0.9, NeuralRankScore: 0.9, LLMScore: 0.9}

	out := fuser.Combine(context.Background(), uuid.New(), []types.LLMPostRankedCandidate{weak, strong})

	require.Len(t, out, 2)
	assert.Equal(t, strong.CandidateID, out[0].CandidateID)
	for _, c := range out {
		assert.InDelta(t, Score(c.PreScore, c.NeuralRankScore, c.LLMScore), c.FinalScore, 1e-12)
		assert.GreaterOrEqual(t, c.FinalScore, 0.0)
		assert.LessOrEqual(t, c.FinalScore, 1.0)
	}
	assert.Equal(t, 2, cache.writes)
}

func TestCombine_AttachesFreshExplanation(t *testing.T) {
	cache := newFakeCache()
	fuser := NewFuser(cache, nil)

	id := uuid.New()
	expl := "Deep platform experience matching the role."
	at := time.Now().Add(-10 * 24 * time.Hour) // stale for scores, fresh for explanations
	cache.entries[id] = &types.CacheEntry{Explanation: &expl, ExplanationUpdatedAt: &at}

	out := fuser.Combine(context.Background(), uuid.New(), []types.LLMPostRankedCandidate{
		{CandidateID: id, PreScore: 0.5, NeuralRankScore: 0.5, LLMScore: 0.5},
	})

	require.Len(t, out, 1)
	assert.Equal(t, expl, out[0].Explanation)
}

func TestCombine_StaleExplanationSubstituted(t *testing.T) {
	cache := newFakeCache()
	fuser := NewFuser(cache, nil)

	id := uuid.New()
	expl := "Too old to trust."
	at := time.Now().Add(-40 * 24 * time.Hour)
	cache.entries[id] = &types.CacheEntry{Explanation: &expl, ExplanationUpdatedAt: &at}

	out := fuser.Combine(context.Background(), uuid.New(), []types.LLMPostRankedCandidate{
		{CandidateID: id, PreScore: 0.5, NeuralRankScore: 0.5, LLMScore: 0.5},
	})

	require.Len(t, out, 1)
	assert.Equal(t, UnavailableExplanation, out[0].Explanation)
}

func TestCombine_CacheFailuresAreNotFatal(t *testing.T) {
	cache := newFakeCache()
	cache.readErr = errors.New("read refused")
	cache.writeErr = errors.New("write refused")
	fuser := NewFuser(cache, nil)

	out := fuser.Combine(context.Background(), uuid.New(), []types.LLMPostRankedCandidate{
		{CandidateID: uuid.New(), PreScore: 0.4, NeuralRankScore: 0.6, LLMScore: 0.5},
	})

	require.Len(t, out, 1)
	assert.Equal(t, UnavailableExplanation, out[0].Explanation)
}

func TestCombine_Empty(t *testing.T) {
	fuser := NewFuser(newFakeCache(), nil)
	out := fuser.Combine(context.Background(), uuid.New(), nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestWithReinforcement(t *testing.T) {
	a := types.FinalScoredCandidate{CandidateID: uuid.New(), FinalScore: 0.70}
	b := types.FinalScoredCandidate{CandidateID: uuid.New(), FinalScore: 0.68}

	// b gets the maximum bonus and overtakes a.
	bonus := func(_ context.Context, _, candidateID uuid.UUID) float64 {
		if candidateID == b.CandidateID {
			return 0.1
		}
		return 0
	}

	out := WithReinforcement(context.Background(), uuid.New(), []types.FinalScoredCandidate{a, b}, bonus)
	require.Len(t, out, 2)
	assert.Equal(t, b.CandidateID, out[0].CandidateID)
	assert.InDelta(t, 0.78, out[0].FinalScore, 1e-12)

	// Original slice untouched.
	assert.InDelta(t, 0.68, b.FinalScore, 1e-12)
}

func TestWithReinforcement_NilBonus(t *testing.T) {
	results := []types.FinalScoredCandidate{{FinalScore: 0.5}}
	assert.Equal(t, results, WithReinforcement(context.Background(), uuid.New(), results, nil))
}
