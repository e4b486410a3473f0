package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FeedbackRecord struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ResponseId  string         `gorm:"type:varchar(64);not null;index"`
	QASessionId *uuid.UUID     `gorm:"type:uuid;index"`
	Route       string         `gorm:"type:varchar(20);not null;index"`
	Status      string         `gorm:"type:varchar(12);not null;default:'accepted';index"`
	Rating      int            `gorm:"default:0"`
	Comment     string         `gorm:"type:text"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	ExpertId    *uuid.UUID     `gorm:"type:uuid;index"`
	TrustScore  *float64       `gorm:"type:numeric(4,3)"`
	Anonymous   bool           `gorm:"default:false"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (FeedbackRecord) TableName() string {
	return "feedback_records"
}
