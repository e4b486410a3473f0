package entity

import (
	"time"

	"github.com/google/uuid"
)

// GoldenAnswer is a curated, expert-approved answer to a recurring
// regulatory question. Serving one skips the LLM entirely.
type GoldenAnswer struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Question string
	Answer   string
	Topic    string

	// EffectiveAt is when the answer was last vetted against the
	// regulations it cites. The KB delta check compares against it.
	EffectiveAt time.Time

	Active    bool
	CuratorId *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
