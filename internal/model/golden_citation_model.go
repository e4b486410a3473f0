package model

import (
	"time"

	"github.com/google/uuid"
)

type GoldenCitation struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GoldenAnswerId uuid.UUID `gorm:"type:uuid;not null;index"`
	KBDocumentId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Label          string    `gorm:"type:varchar(255)"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (GoldenCitation) TableName() string {
	return "golden_citations"
}
