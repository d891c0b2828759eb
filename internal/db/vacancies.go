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
// Vacancy Methods
// -----------------------------------------------------------------------------

// GetVacancy retrieves a vacancy by id, including its embedding vectors.
// Returns ErrNotFound if no such vacancy exists.
func (db *DB) GetVacancy(ctx context.Context, id uuid.UUID) (*types.Vacancy, error) {
	var v types.Vacancy
	var titleEmb, descEmb, combinedEmb *pgvector.Vector

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, location, industry, required_skills, description, remote,
		        title_embedding, description_embedding, combined_embedding,
		        created_at, updated_at
		 FROM vacancies WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Title, &v.Location, &v.Industry, &v.RequiredSkills, &v.Description,
		&v.Remote, &titleEmb, &descEmb, &combinedEmb, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("vacancy %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get vacancy: %w", err)
	}

	v.TitleEmbedding = vectorSlice(titleEmb)
	v.DescriptionEmbedding = vectorSlice(descEmb)
	v.CombinedEmbedding = vectorSlice(combinedEmb)

	return &v, nil
}

// VacancyEmbedding pairs a vacancy id with its stored combined embedding.
// Used by the clustering subsystem's bulk read.
type VacancyEmbedding struct {
	VacancyID uuid.UUID
	Embedding []float32
}

// ListVacancyEmbeddings returns the combined embedding of every vacancy
// that has one. Vacancies without an embedding are skipped, not errors.
func (db *DB) ListVacancyEmbeddings(ctx context.Context) ([]VacancyEmbedding, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, combined_embedding FROM vacancies
		 WHERE combined_embedding IS NOT NULL
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacancy embeddings: %w", err)
	}
	defer rows.Close()

	var result []VacancyEmbedding
	for rows.Next() {
		var ve VacancyEmbedding
		var emb pgvector.Vector
		if err := rows.Scan(&ve.VacancyID, &emb); err != nil {
			return nil, fmt.Errorf("failed to scan vacancy embedding: %w", err)
		}
		ve.Embedding = emb.Slice()
		result = append(result, ve)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vacancy embeddings: %w", err)
	}

	return result, nil
}

// VacancySummary carries the attribute fields clustering derives cluster
// properties from, without description text or vectors.
type VacancySummary struct {
	VacancyID uuid.UUID
	Title     string
	Industry  string
	Skills    []string
}

// ListVacancySummaries returns title/industry/skills for every vacancy,
// keyed by id.
func (db *DB) ListVacancySummaries(ctx context.Context) (map[uuid.UUID]VacancySummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, industry, required_skills FROM vacancies`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacancy summaries: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]VacancySummary)
	for rows.Next() {
		var vs VacancySummary
		if err := rows.Scan(&vs.VacancyID, &vs.Title, &vs.Industry, &vs.Skills); err != nil {
			return nil, fmt.Errorf("failed to scan vacancy summary: %w", err)
		}
		result[vs.VacancyID] = vs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vacancy summaries: %w", err)
	}

	return result, nil
}

// SimilarVacancy is one row of a nearest-neighbour vacancy lookup.
type SimilarVacancy struct {
	VacancyID  uuid.UUID `json:"vacancy_id"`
	Title      string    `json:"title"`
	Similarity float64   `json:"similarity"`
}

// FindSimilarVacancies returns up to limit vacancies ordered by cosine
// similarity of their combined embeddings to the given vacancy's, excluding
// the vacancy itself. Ordering is done by the database's vector index.
func (db *DB) FindSimilarVacancies(ctx context.Context, id uuid.UUID, limit int) ([]SimilarVacancy, error) {
	v, err := db.GetVacancy(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(v.CombinedEmbedding) == 0 {
		return nil, fmt.Errorf("vacancy %s has no combined embedding", id)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, title, 1 - (combined_embedding <=> $1) AS similarity
		 FROM vacancies
		 WHERE id <> $2 AND combined_embedding IS NOT NULL
		 ORDER BY combined_embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(v.CombinedEmbedding), id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar vacancies: %w", err)
	}
	defer rows.Close()

	var result []SimilarVacancy
	for rows.Next() {
		var sv SimilarVacancy
		if err := rows.Scan(&sv.VacancyID, &sv.Title, &sv.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan similar vacancy: %w", err)
		}
		result = append(result, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read similar vacancies: %w", err)
	}

	return result, nil
}

func vectorSlice(v *pgvector.Vector) []float32 {
	if v == nil {
		return nil
	}
	return v.Slice()
}
