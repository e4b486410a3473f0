package entity

import (
	"time"

	"github.com/google/uuid"
)

// QACitation links an assistant message to the KB passage it cited.
type QACitation struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	QAMessageId  uuid.UUID `gorm:"type:uuid;not null;index"`
	KBDocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	Label        string
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	// Relationships
	QAMessage  *QAMessage  `gorm:"foreignKey:QAMessageId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	KBDocument *KBDocument `gorm:"foreignKey:KBDocumentId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
