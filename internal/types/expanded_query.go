//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExpandedQuery is the structured expansion of a vacancy description:
// normalized titles, responsibilities, skill groups and keywords, plus an
// "enhanced" embedding built from the concatenation of all expanded fields.
// Computed lazily on first request and cached per vacancy.
type ExpandedQuery struct {
	VacancyID            uuid.UUID  `json:"vacancy_id"`
	PrimaryTitle         string     `json:"primary_title"`
	AlternateTitles      []string   `json:"alternate_titles"`
	CoreResponsibilities []string   `json:"core_responsibilities"`
	SkillGroups          [][]string `json:"skill_groups"`
	Industry             string     `json:"industry"`
	Keywords             []string   `json:"keywords"`

	EnhancedEmbedding []float32 `json:"-"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CombinedText concatenates every expanded field into the single text the
// enhanced embedding is built from.
func (q *ExpandedQuery) CombinedText() string {
	parts := []string{q.PrimaryTitle}
	parts = append(parts, q.AlternateTitles...)
	parts = append(parts, q.CoreResponsibilities...)
	for _, group := range q.SkillGroups {
		parts = append(parts, strings.Join(group, " "))
	}
	if q.Industry != "" {
		parts = append(parts, q.Industry)
	}
	parts = append(parts, q.Keywords...)

	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
