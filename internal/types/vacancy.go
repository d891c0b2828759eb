// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vacancy represents a job opening to rank candidates against.
// Embeddings are produced upstream when the vacancy is created or updated;
// the pipeline only reads them.
type Vacancy struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Location       string    `json:"location"`
	Industry       string    `json:"industry"`
	RequiredSkills []string  `json:"required_skills"`
	Description    string    `json:"description"`
	Remote         bool      `json:"remote"`

	TitleEmbedding       []float32 `json:"-"`
	DescriptionEmbedding []float32 `json:"-"`
	CombinedEmbedding    []float32 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRemote reports whether the vacancy allows remote work, either via the
// explicit flag or a "remote" location string.
func (v *Vacancy) IsRemote() bool {
	return v.Remote || strings.EqualFold(strings.TrimSpace(v.Location), "remote")
}
