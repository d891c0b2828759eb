package neuralrank

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-match/internal/llm"
	"github.com/jonathan/talent-match/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)

	mu    sync.Mutex
	calls int
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "0.5", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GetModel(llm.ModelTier) string { return "mock-model" }
func (m *MockLLMClient) Close() error                  { return nil }

func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeCache implements ScoreCache in memory.
type fakeCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*types.CacheEntry
	writes  int
	readErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[uuid.UUID]*types.CacheEntry{}}
}

func (f *fakeCache) GetCacheEntries(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*types.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

func (f *fakeCache) UpsertNeuralScore(_ context.Context, vacancyID, candidateID uuid.UUID, score float64, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.entries[candidateID] = &types.CacheEntry{
		VacancyID:       vacancyID,
		CandidateID:     candidateID,
		NeuralRankScore: &score,
		NeuralUpdatedAt: &now,
	}
	return nil
}

func buildInput(n int) (*types.Vacancy, []types.PreScoreResult, map[uuid.UUID]*types.Candidate) {
	vacancy := &types.Vacancy{ID: uuid.New(), Description: "Job text"}
	var preScored []types.PreScoreResult
	pool := map[uuid.UUID]*types.Candidate{}
	for i := 0; i < n; i++ {
		id := uuid.New()
		preScored = append(preScored, types.PreScoreResult{CandidateID: id, PreScore: 0.8})
		pool[id] = &types.Candidate{ID: id, ResumeText: "Resume text"}
	}
	return vacancy, preScored, pool
}

func fastRetry() llm.RetryPolicy {
	return llm.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestRank_ScoresAndCaches(t *testing.T) {
	client := &MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "0.9", nil
		},
	}
	cache := newFakeCache()
	ranker := NewRanker(client, cache, fastRetry(), nil)

	vacancy, preScored, pool := buildInput(3)
	out, err := ranker.Rank(context.Background(), vacancy, preScored, pool)

	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, c := range out {
		assert.Equal(t, 0.9, c.NeuralRankScore)
		assert.Equal(t, 0.8, c.PreScore, "pre-score carried forward")
	}
	assert.Equal(t, 3, cache.writes)
}

func TestRank_FreshCacheSkipsScorer(t *testing.T) {
	client := &MockLLMClient{}
	cache := newFakeCache()
	ranker := NewRanker(client, cache, fastRetry(), nil)

	vacancy, preScored, pool := buildInput(1)
	id := preScored[0].CandidateID
	score := 0.77
	at := time.Now().Add(-24 * time.Hour)
	cache.entries[id] = &types.CacheEntry{
		VacancyID: vacancy.ID, CandidateID: id,
		NeuralRankScore: &score, NeuralUpdatedAt: &at,
	}

	out, err := ranker.Rank(context.Background(), vacancy, preScored, pool)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0.77, out[0].NeuralRankScore)
	assert.Equal(t, 0, client.Calls(), "fresh cache hit must not call the scorer")
}

func TestRank_StaleCacheTriggersRecompute(t *testing.T) {
	client := &MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "0.4", nil
		},
	}
	cache := newFakeCache()
	ranker := NewRanker(client, cache, fastRetry(), nil)

	vacancy, preScored, pool := buildInput(1)
	id := preScored[0].CandidateID
	score := 0.77
	at := time.Now().Add(-8 * 24 * time.Hour) // older than the 7-day window
	cache.entries[id] = &types.CacheEntry{
		VacancyID: vacancy.ID, CandidateID: id,
		NeuralRankScore: &score, NeuralUpdatedAt: &at,
	}

	out, err := ranker.Rank(context.Background(), vacancy, preScored, pool)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0.4, out[0].NeuralRankScore)
	assert.Equal(t, 1, client.Calls())
}

func TestRank_FailedCandidateDropped(t *testing.T) {
	vacancy, preScored, pool := buildInput(3)
	failing := preScored[1].CandidateID

	// Make one candidate's resume unique so we can fail just that call.
	pool[failing].ResumeText = "FAIL-MARKER"
	client := &MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			if strings.Contains(prompt, "FAIL-MARKER") {
				return "", errors.New("transient provider failure")
			}
			return "0.6", nil
		},
	}

	ranker := NewRanker(client, newFakeCache(), fastRetry(), nil)
	out, err := ranker.Rank(context.Background(), vacancy, preScored, pool)

	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, c := range out {
		assert.NotEqual(t, failing, c.CandidateID)
	}
}

func TestRank_TruncatesToTopTen(t *testing.T) {
	client := &MockLLMClient{}
	scoreSeq := 0.0
	var mu sync.Mutex
	client.GenerateContentFunc = func(context.Context, string, llm.ModelTier) (string, error) {
		mu.Lock()
		scoreSeq += 0.01
		s := scoreSeq
		mu.Unlock()
		return strconv.FormatFloat(s, 'f', 3, 64), nil
	}

	ranker := NewRanker(client, newFakeCache(), fastRetry(), nil)
	vacancy, preScored, pool := buildInput(25)

	out, err := ranker.Rank(context.Background(), vacancy, preScored, pool)

	require.NoError(t, err)
	assert.Len(t, out, TopN)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].NeuralRankScore, out[i].NeuralRankScore)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	ranker := NewRanker(&MockLLMClient{}, newFakeCache(), fastRetry(), nil)
	out, err := ranker.Rank(context.Background(), &types.Vacancy{ID: uuid.New()}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRank_CacheReadFailureFallsBackToScoring(t *testing.T) {
	client := &MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "0.3", nil
		},
	}
	cache := newFakeCache()
	cache.readErr = errors.New("connection refused")

	ranker := NewRanker(client, cache, fastRetry(), nil)
	vacancy, preScored, pool := buildInput(2)

	out, err := ranker.Rank(context.Background(), vacancy, preScored, pool)
	require.NoError(t, err, "a cache read failure must not fail the ranking")
	assert.Len(t, out, 2)
}

func TestRank_ScoreClamped(t *testing.T) {
	client := &MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "1.7", nil
		},
	}
	ranker := NewRanker(client, newFakeCache(), fastRetry(), nil)
	vacancy, preScored, pool := buildInput(1)

	out, err := ranker.Rank(context.Background(), vacancy, preScored, pool)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].NeuralRankScore)
}
