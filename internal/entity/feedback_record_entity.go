package entity

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackRecord is one feedback submission outcome. Accepted submissions
// keep their content; expert submissions rejected at the trust gate keep
// only the rejection reason and score in Payload, the rated content is
// discarded.
type FeedbackRecord struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	// ResponseId ties the feedback to the answer it concerns.
	ResponseId  string
	QASessionId *uuid.UUID `gorm:"type:uuid"`

	// Route is which collector handled it: faq, knowledge, or expert.
	Route string

	// Status is accepted or rejected. Only the expert trust gate produces
	// rejected rows.
	Status string

	Rating  int
	Comment string

	// Payload keeps the raw form answers for later analysis.
	Payload map[string]any `gorm:"-"`

	// ExpertId and TrustScore are set only on the expert route.
	ExpertId   *uuid.UUID `gorm:"type:uuid"`
	TrustScore *float64

	Anonymous bool
	CreatedAt time.Time
}
