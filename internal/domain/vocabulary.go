package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vocabulary is a canonical dictionary entry. It is owned by the surrounding
// system; the review engine reads it and never modifies it.
type Vocabulary struct {
	ID       uuid.UUID `json:"id"`
	Term     string    `json:"term"`
	Reading  string    `json:"reading,omitempty"`
	Meaning  string    `json:"meaning,omitempty"`
	Language string    `json:"language,omitempty"`

	// StudyStatus is informational only and never drives scheduling.
	StudyStatus string    `json:"study_status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
