package entity

import (
	"time"

	"github.com/google/uuid"
)

// KBDocument is one knowledge-base passage: a statute article, ministry
// circular, or guidance note indexed for hybrid retrieval.
type KBDocument struct {
	Id      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title   string
	Content string

	// Source is the official reference of the underlying text,
	// e.g. "ET art. 34" or "BOE-A-2023-12345".
	Source   string
	Category string

	// EffectiveAt is when the cited regulation took effect; recency
	// scoring and golden-answer delta checks read this, not CreatedAt.
	EffectiveAt time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
