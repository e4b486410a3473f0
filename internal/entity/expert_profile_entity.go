package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExpertProfile identifies a vetted reviewer whose feedback may correct
// answers. TrustScore gates whether their submissions are recorded.
type ExpertProfile struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	DisplayName string
	Email       string
	Specialty   string

	// TrustScore in [0,1], maintained by the review desk. Submissions
	// below the acceptance threshold are rejected at the trust gate.
	TrustScore float64

	ReviewCount int
	Active      bool

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
