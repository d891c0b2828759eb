//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// NoiseCluster is the sentinel id for vacancies that do not belong to any
// cluster.
const NoiseCluster = -1

// ClusterAssignment maps one vacancy to a cluster id (NoiseCluster for
// unclustered vacancies). Assignments are replaced wholesale on each
// clustering run.
type ClusterAssignment struct {
	VacancyID uuid.UUID `json:"vacancy_id"`
	ClusterID int       `json:"cluster_id"`
}

// ClusterProperties summarizes the members of one cluster: the most common
// titles, skills and industries, and the member count. Recomputed on every
// clustering run.
type ClusterProperties struct {
	ClusterID   int       `json:"cluster_id"`
	TopTitles   []string  `json:"top_titles"`
	TopSkills   []string  `json:"top_skills"`
	TopIndustry []string  `json:"top_industries"`
	MemberCount int       `json:"member_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}
