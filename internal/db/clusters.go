package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/talent-match/internal/types"
)

// -----------------------------------------------------------------------------
// Cluster Methods
// -----------------------------------------------------------------------------

// ReplaceClusterAssignments atomically swaps all cluster assignments for the
// results of a fresh clustering run. Full recompute, not incremental.
func (db *DB) ReplaceClusterAssignments(ctx context.Context, assignments []types.ClusterAssignment) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cluster transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM job_clusters`); err != nil {
		return fmt.Errorf("failed to clear cluster assignments: %w", err)
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx,
			`INSERT INTO job_clusters (vacancy_id, cluster_id) VALUES ($1, $2)`,
			a.VacancyID, a.ClusterID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cluster assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cluster assignments: %w", err)
	}
	return nil
}

// GetClusterAssignment returns the cluster id for a vacancy. A vacancy with
// no assignment (or assigned to noise) reports ok = false.
func (db *DB) GetClusterAssignment(ctx context.Context, vacancyID uuid.UUID) (int, bool, error) {
	var clusterID int
	err := db.pool.QueryRow(ctx,
		`SELECT cluster_id FROM job_clusters WHERE vacancy_id = $1`,
		vacancyID,
	).Scan(&clusterID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return types.NoiseCluster, false, nil
		}
		return types.NoiseCluster, false, fmt.Errorf("failed to get cluster assignment: %w", err)
	}

	if clusterID == types.NoiseCluster {
		return types.NoiseCluster, false, nil
	}
	return clusterID, true, nil
}

// UpsertClusterProperties writes the derived representative attributes for
// one cluster.
func (db *DB) UpsertClusterProperties(ctx context.Context, props *types.ClusterProperties) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO cluster_properties (cluster_id, top_titles, top_skills, top_industries, member_count, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (cluster_id)
		 DO UPDATE SET top_titles = $2, top_skills = $3, top_industries = $4, member_count = $5, updated_at = $6`,
		props.ClusterID, props.TopTitles, props.TopSkills, props.TopIndustry,
		props.MemberCount, props.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cluster properties: %w", err)
	}
	return nil
}

// GetClusterProperties retrieves the derived attributes for one cluster.
// Returns ErrNotFound for an unknown cluster id.
func (db *DB) GetClusterProperties(ctx context.Context, clusterID int) (*types.ClusterProperties, error) {
	var p types.ClusterProperties
	err := db.pool.QueryRow(ctx,
		`SELECT cluster_id, top_titles, top_skills, top_industries, member_count, updated_at
		 FROM cluster_properties WHERE cluster_id = $1`,
		clusterID,
	).Scan(&p.ClusterID, &p.TopTitles, &p.TopSkills, &p.TopIndustry, &p.MemberCount, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("cluster %d: %w", clusterID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cluster properties: %w", err)
	}
	return &p, nil
}

// DeleteClusterProperties removes property rows for clusters that no longer
// exist after a clustering run.
func (db *DB) DeleteClusterProperties(ctx context.Context, keepClusterIDs []int) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM cluster_properties WHERE NOT (cluster_id = ANY($1))`,
		keepClusterIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to prune cluster properties: %w", err)
	}
	return nil
}

// CountClusterMembers returns the number of vacancies assigned to a cluster.
func (db *DB) CountClusterMembers(ctx context.Context, clusterID int) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_clusters WHERE cluster_id = $1`,
		clusterID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cluster members: %w", err)
	}
	return count, nil
}
