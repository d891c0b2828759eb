package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/jonathan/talent-match/internal/types"
)

// -----------------------------------------------------------------------------
// Candidate Methods
// -----------------------------------------------------------------------------

const candidateColumns = `id, title, location, industry, skills, resume_text,
	        meta_embedding, content_embedding, created_at, updated_at`

// GetCandidate retrieves a candidate by id. Returns ErrNotFound if no such
// candidate exists.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)

	c, err := scanCandidate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns the full candidate pool. The pre-filter runs over
// this set in memory; pool sizes are expected to stay in the low tens of
// thousands.
func (db *DB) ListCandidates(ctx context.Context) ([]*types.Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var result []*types.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}

	return result, nil
}

func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var c types.Candidate
	var metaEmb, contentEmb *pgvector.Vector

	err := row.Scan(&c.ID, &c.Title, &c.Location, &c.Industry, &c.Skills,
		&c.ResumeText, &metaEmb, &contentEmb, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.MetaEmbedding = vectorSlice(metaEmb)
	c.ContentEmbedding = vectorSlice(contentEmb)
	return &c, nil
}
