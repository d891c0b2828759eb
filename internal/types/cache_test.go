package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ptrFloat(v float64) *float64    { return &v }
func ptrString(s string) *string     { return &s }
func ptrTime(t time.Time) *time.Time { return &t }

func TestFreshNeuralScore_WithinWindow(t *testing.T) {
	now := time.Now()
	entry := &CacheEntry{
		VacancyID:       uuid.New(),
		CandidateID:     uuid.New(),
		NeuralRankScore: ptrFloat(0.82),
		NeuralUpdatedAt: ptrTime(now.Add(-6 * 24 * time.Hour)),
	}

	score, ok := entry.FreshNeuralScore(now)
	assert.True(t, ok)
	assert.Equal(t, 0.82, score)
}

func TestFreshNeuralScore_Expired(t *testing.T) {
	now := time.Now()
	entry := &CacheEntry{
		NeuralRankScore: ptrFloat(0.82),
		NeuralUpdatedAt: ptrTime(now.Add(-8 * 24 * time.Hour)),
	}

	_, ok := entry.FreshNeuralScore(now)
	assert.False(t, ok)
}

func TestFreshNeuralScore_MissingFields(t *testing.T) {
	now := time.Now()

	var nilEntry *CacheEntry
	_, ok := nilEntry.FreshNeuralScore(now)
	assert.False(t, ok)

	_, ok = (&CacheEntry{NeuralRankScore: ptrFloat(0.5)}).FreshNeuralScore(now)
	assert.False(t, ok, "score without timestamp must be treated as absent")
}

func TestFreshLLMScore_Window(t *testing.T) {
	now := time.Now()
	entry := &CacheEntry{
		LLMScore:     ptrFloat(0.64),
		LLMUpdatedAt: ptrTime(now.Add(-3 * 24 * time.Hour)),
	}

	score, ok := entry.FreshLLMScore(now)
	assert.True(t, ok)
	assert.Equal(t, 0.64, score)

	entry.LLMUpdatedAt = ptrTime(now.Add(-7*24*time.Hour - time.Minute))
	_, ok = entry.FreshLLMScore(now)
	assert.False(t, ok)
}

func TestFreshExplanation_UsesThirtyDayWindow(t *testing.T) {
	now := time.Now()
	entry := &CacheEntry{
		Explanation:          ptrString("Strong overlap in data engineering skills."),
		ExplanationUpdatedAt: ptrTime(now.Add(-20 * 24 * time.Hour)),
	}

	// 20 days is stale for scores but fresh for explanations.
	text, ok := entry.FreshExplanation(now)
	assert.True(t, ok)
	assert.NotEmpty(t, text)

	entry.ExplanationUpdatedAt = ptrTime(now.Add(-31 * 24 * time.Hour))
	_, ok = entry.FreshExplanation(now)
	assert.False(t, ok)
}

func TestVacancyIsRemote(t *testing.T) {
	assert.True(t, (&Vacancy{Remote: true}).IsRemote())
	assert.True(t, (&Vacancy{Location: "Remote"}).IsRemote())
	assert.True(t, (&Vacancy{Location: " remote "}).IsRemote())
	assert.False(t, (&Vacancy{Location: "Berlin"}).IsRemote())
}

func TestExpandedQueryCombinedText(t *testing.T) {
	q := &ExpandedQuery{
		PrimaryTitle:         "Data Engineer",
		AlternateTitles:      []string{"ETL Engineer", ""},
		CoreResponsibilities: []string{"Build pipelines"},
		SkillGroups:          [][]string{{"python", "sql"}},
		Industry:             "fintech",
		Keywords:             []string{"airflow"},
	}

	text := q.CombinedText()
	assert.Contains(t, text, "Data Engineer")
	assert.Contains(t, text, "python sql")
	assert.Contains(t, text, "fintech")
	assert.NotContains(t, text, "\n\n", "empty fields must be dropped")
}
