//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Candidate represents a person in the candidate pool. Read-only from the
// pipeline's perspective; created and updated by upstream ingestion.
type Candidate struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	Industry   string    `json:"industry"`
	Skills     []string  `json:"skills"`
	ResumeText string    `json:"resume_text"`

	// MetaEmbedding covers title/skills/industry; ContentEmbedding covers
	// the full resume text.
	MetaEmbedding    []float32 `json:"-"`
	ContentEmbedding []float32 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
