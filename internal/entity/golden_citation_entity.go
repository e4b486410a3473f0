package entity

import (
	"time"

	"github.com/google/uuid"
)

type GoldenCitation struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	GoldenAnswerId uuid.UUID `gorm:"type:uuid;not null;index"`
	KBDocumentId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Label          string
	CreatedAt      time.Time `gorm:"autoCreateTime"`

	// Relationships
	GoldenAnswer *GoldenAnswer `gorm:"foreignKey:GoldenAnswerId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	KBDocument   *KBDocument   `gorm:"foreignKey:KBDocumentId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
