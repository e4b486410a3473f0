package entity

import (
	"time"

	"github.com/google/uuid"
)

type QASession struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	// ClientKey identifies the asker: an API client id, or an opaque
	// anonymous token when the caller is not signed in.
	ClientKey string

	Title     string
	Anonymous bool
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
