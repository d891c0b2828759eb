package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/talent-match/internal/types"
)

// -----------------------------------------------------------------------------
// Score Cache Methods
//
// One row per (vacancy, candidate) pair. Every layer upserts only the fields
// it owns, so concurrent writers from different layers never clobber each
// other's values.
// -----------------------------------------------------------------------------

// GetCacheEntries loads the cache rows for the given candidates under one
// vacancy. Missing pairs are simply absent from the returned map.
func (db *DB) GetCacheEntries(ctx context.Context, vacancyID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]*types.CacheEntry, error) {
	if len(candidateIDs) == 0 {
		return map[uuid.UUID]*types.CacheEntry{}, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT vacancy_id, candidate_id,
		        neural_rank_score, neural_updated_at,
		        llm_score, llm_updated_at,
		        explanation, explanation_updated_at,
		        pre_score, final_score, final_updated_at
		 FROM score_cache
		 WHERE vacancy_id = $1 AND candidate_id = ANY($2)`,
		vacancyID, candidateIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query score cache: %w", err)
	}
	defer rows.Close()

	entries := make(map[uuid.UUID]*types.CacheEntry, len(candidateIDs))
	for rows.Next() {
		var e types.CacheEntry
		err := rows.Scan(&e.VacancyID, &e.CandidateID,
			&e.NeuralRankScore, &e.NeuralUpdatedAt,
			&e.LLMScore, &e.LLMUpdatedAt,
			&e.Explanation, &e.ExplanationUpdatedAt,
			&e.PreScore, &e.FinalScore, &e.FinalUpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score cache entry: %w", err)
		}
		entries[e.CandidateID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read score cache: %w", err)
	}

	return entries, nil
}

// UpsertNeuralScore writes the pairwise comparison score for one pair,
// touching only the neural fields.
func (db *DB) UpsertNeuralScore(ctx context.Context, vacancyID, candidateID uuid.UUID, score float64, now time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO score_cache (vacancy_id, candidate_id, neural_rank_score, neural_updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (vacancy_id, candidate_id)
		 DO UPDATE SET neural_rank_score = $3, neural_updated_at = $4`,
		vacancyID, candidateID, score, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert neural score: %w", err)
	}
	return nil
}

// UpsertLLMResult writes the batched judgment score and explanation for one
// pair, touching only the llm and explanation fields.
func (db *DB) UpsertLLMResult(ctx context.Context, vacancyID, candidateID uuid.UUID, score float64, explanation string, now time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO score_cache (vacancy_id, candidate_id, llm_score, llm_updated_at, explanation, explanation_updated_at)
		 VALUES ($1, $2, $3, $4, $5, $4)
		 ON CONFLICT (vacancy_id, candidate_id)
		 DO UPDATE SET llm_score = $3, llm_updated_at = $4, explanation = $5, explanation_updated_at = $4`,
		vacancyID, candidateID, score, now, explanation,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert llm result: %w", err)
	}
	return nil
}

// UpsertFinalScores writes the fused score tuple for one pair, touching only
// the pre/final fields.
func (db *DB) UpsertFinalScores(ctx context.Context, vacancyID, candidateID uuid.UUID, preScore, finalScore float64, now time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO score_cache (vacancy_id, candidate_id, pre_score, final_score, final_updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (vacancy_id, candidate_id)
		 DO UPDATE SET pre_score = $3, final_score = $4, final_updated_at = $5`,
		vacancyID, candidateID, preScore, finalScore, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert final scores: %w", err)
	}
	return nil
}
