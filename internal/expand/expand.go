// Package expand turns a vacancy description into a structured search query:
// canonical and alternate titles, responsibilities, grouped skills and
// keywords, plus an "enhanced" embedding of the combined expansion text.
// Expansions are computed lazily on first request and cached per vacancy.
package expand

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/embedding"
	"github.com/jonathan/talent-match/internal/llm"
	"github.com/jonathan/talent-match/internal/observability"
	"github.com/jonathan/talent-match/internal/prompts"
	"github.com/jonathan/talent-match/internal/schemas"
	"github.com/jonathan/talent-match/internal/types"
)

// maxFallbackKeywords bounds the keyword list produced by the heuristic
// expansion when the LLM is unavailable.
const maxFallbackKeywords = 12

// Store is the persistence surface expansion needs.
type Store interface {
	GetExpandedQuery(ctx context.Context, vacancyID uuid.UUID) (*types.ExpandedQuery, error)
	UpsertExpandedQuery(ctx context.Context, q *types.ExpandedQuery) error
}

// Service expands vacancy descriptions into structured queries.
type Service struct {
	client   llm.Client
	embedder embedding.Embedder
	store    Store
	retry    llm.RetryPolicy
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates an expansion service.
func NewService(client llm.Client, embedder embedding.Embedder, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		embedder: embedder,
		store:    store,
		retry:    llm.DefaultRetryPolicy(),
		logger:   logger,
		now:      time.Now,
	}
}

// Expand returns the structured expansion for a vacancy, computing and
// caching it on first request. An unavailable LLM degrades to a
// deterministic heuristic built from the vacancy's own fields, so Expand
// only fails on persistence-read errors.
func (s *Service) Expand(ctx context.Context, vacancy *types.Vacancy) (*types.ExpandedQuery, error) {
	cached, err := s.store.GetExpandedQuery(ctx, vacancy.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached expansion: %w", err)
	}
	if cached != nil {
		return cached, nil
	}

	query, err := s.expandWithLLM(ctx, vacancy)
	if err != nil {
		s.logger.Warn("query expansion via LLM failed, using heuristic fallback",
			zap.String("vacancy_id", vacancy.ID.String()),
			zap.Error(err))
		query = heuristicExpansion(vacancy)
	}
	query.VacancyID = vacancy.ID
	query.UpdatedAt = s.now()

	if emb, err := s.embedder.EmbedText(ctx, query.CombinedText()); err != nil {
		s.logger.Warn("failed to embed expanded query text",
			zap.String("vacancy_id", vacancy.ID.String()),
			zap.Error(err))
	} else {
		query.EnhancedEmbedding = emb
	}

	if err := s.store.UpsertExpandedQuery(ctx, query); err != nil {
		s.logger.Warn("failed to cache expanded query",
			zap.String("vacancy_id", vacancy.ID.String()),
			zap.Error(err))
	}

	return query, nil
}

func (s *Service) expandWithLLM(ctx context.Context, vacancy *types.Vacancy) (*types.ExpandedQuery, error) {
	template := prompts.MustGet("matching.json", "expand-query")
	prompt := prompts.Format(template, map[string]string{
		"Description": vacancy.Description,
	})

	var raw string
	err := llm.WithRetry(ctx, s.retry, func() error {
		var genErr error
		raw, genErr = s.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("expansion generation failed: %w", err)
	}

	query, err := parseExpansion(raw)
	if err != nil {
		s.logger.Debug("unparseable expansion response",
			zap.String("response", observability.TruncateForLog(raw, 200)))
		return nil, err
	}
	return query, nil
}

// parseExpansion validates and decodes the model's JSON, tolerating a
// markdown code fence around the document.
func parseExpansion(raw string) (*types.ExpandedQuery, error) {
	var lastErr error
	for _, attempt := range []string{raw, llm.CleanJSONBlock(raw)} {
		doc := []byte(attempt)
		if err := schemas.Validate(schemas.ExpandedQuery, doc); err != nil {
			lastErr = err
			continue
		}
		var q types.ExpandedQuery
		if err := json.Unmarshal(doc, &q); err != nil {
			lastErr = err
			continue
		}
		return &q, nil
	}
	return nil, fmt.Errorf("invalid expansion response: %w", lastErr)
}

// stopWords are tokens too generic to count as search keywords.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "is": true, "it": true, "of": true, "on": true,
	"or": true, "our": true, "that": true, "the": true, "to": true,
	"we": true, "will": true, "with": true, "you": true, "your": true,
}

// heuristicExpansion builds a degraded expansion from the vacancy's own
// fields: the stored title and industry verbatim, required skills as one
// group, and the most frequent non-stop-word description tokens as keywords.
func heuristicExpansion(vacancy *types.Vacancy) *types.ExpandedQuery {
	query := &types.ExpandedQuery{
		PrimaryTitle:         vacancy.Title,
		AlternateTitles:      []string{},
		CoreResponsibilities: []string{},
		SkillGroups:          [][]string{},
		Industry:             vacancy.Industry,
		Keywords:             extractKeywords(vacancy.Description, maxFallbackKeywords),
	}
	if len(vacancy.RequiredSkills) > 0 {
		query.SkillGroups = append(query.SkillGroups, vacancy.RequiredSkills)
	}
	return query
}

// extractKeywords tokenizes text on non-letter/digit boundaries and returns
// the most frequent tokens, skipping stop words and single characters.
func extractKeywords(text string, limit int) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})

	counts := make(map[string]int)
	for _, tok := range tokens {
		if len(tok) < 2 || stopWords[tok] {
			continue
		}
		counts[tok]++
	}

	keywords := make([]string, 0, len(counts))
	for tok := range counts {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '+' || r == '#':
		// keeps "c++" and "c#" intact
		return true
	}
	return false
}
