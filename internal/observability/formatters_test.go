package observability

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-match/internal/types"
)

func TestPrintVacancy(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVacancy(&types.Vacancy{
		Title:          "Data Engineer",
		Location:       "Berlin",
		Industry:       "fintech",
		RequiredSkills: []string{"sql", "python", "airflow", "dbt", "spark", "kafka"},
	})

	out := buf.String()
	assert.Contains(t, out, "Data Engineer")
	assert.Contains(t, out, "fintech")
	assert.Contains(t, out, "... and 1 more")
}

func TestPrintVacancy_NilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintVacancy(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRanking(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	id := uuid.New()
	p.PrintRanking([]types.FinalScoredCandidate{
		{CandidateID: id, PreScore: 0.8, NeuralRankScore: 0.7, LLMScore: 0.9, FinalScore: 0.78, Explanation: "Close skills match."},
	})

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "final=0.780")
	assert.Contains(t, out, id.String()[:8])
}

func TestPrintRanking_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRanking(nil)
	assert.Contains(t, buf.String(), "No eligible candidates")
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "abc", TruncateForLog("abc", 10))
	assert.Equal(t, "abcde...", TruncateForLog("abcdefgh", 5))
	assert.Equal(t, "", TruncateForLog("abc", 0))
}
