package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/jonathan/talent-match/internal/types"
)

// -----------------------------------------------------------------------------
// Expanded Query Methods
// -----------------------------------------------------------------------------

// GetExpandedQuery retrieves the cached structured expansion for a vacancy.
// Returns (nil, nil) on a cache miss; expansions are lazily computed.
func (db *DB) GetExpandedQuery(ctx context.Context, vacancyID uuid.UUID) (*types.ExpandedQuery, error) {
	var doc []byte
	var emb *pgvector.Vector
	var q types.ExpandedQuery

	err := db.pool.QueryRow(ctx,
		`SELECT vacancy_id, document, enhanced_embedding, updated_at
		 FROM expanded_queries WHERE vacancy_id = $1`,
		vacancyID,
	).Scan(&q.VacancyID, &doc, &emb, &q.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expanded query: %w", err)
	}

	if err := json.Unmarshal(doc, &q); err != nil {
		return nil, fmt.Errorf("failed to parse expanded query document: %w", err)
	}
	q.VacancyID = vacancyID
	q.EnhancedEmbedding = vectorSlice(emb)

	return &q, nil
}

// UpsertExpandedQuery stores the structured expansion and its enhanced
// embedding, keyed by vacancy id.
func (db *DB) UpsertExpandedQuery(ctx context.Context, q *types.ExpandedQuery) error {
	doc, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal expanded query: %w", err)
	}

	var emb any
	if len(q.EnhancedEmbedding) > 0 {
		emb = pgvector.NewVector(q.EnhancedEmbedding)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO expanded_queries (vacancy_id, document, enhanced_embedding, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (vacancy_id)
		 DO UPDATE SET document = $2, enhanced_embedding = $3, updated_at = $4`,
		q.VacancyID, doc, emb, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert expanded query: %w", err)
	}
	return nil
}
