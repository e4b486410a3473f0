package entity

import (
	"time"

	"github.com/google/uuid"
)

// LaborAgreement is a collective agreement record the agreement-lookup tool
// resolves against when a question is scoped to a sector or region.
type LaborAgreement struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string
	Sector string
	Region string

	// Scope is "company", "sector", or "national".
	Scope string

	ValidFrom  time.Time
	ValidUntil *time.Time
	Summary    string
	SourceURL  string

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
