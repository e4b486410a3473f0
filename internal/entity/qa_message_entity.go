package entity

import (
	"time"

	"github.com/google/uuid"
)

type QAMessage struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	QASessionId uuid.UUID `gorm:"type:uuid;index"`
	Role        string
	Content     string

	// RequestId is set on assistant messages so feedback can reference
	// the exact response it concerns.
	RequestId string

	// AnswerPath records how the answer was produced: golden, cache,
	// llm, or llm_tools.
	AnswerPath string

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
