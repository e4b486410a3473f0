package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UsageRecord struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestId   string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	QASessionId *uuid.UUID `gorm:"type:uuid;index"`

	Stage        string `gorm:"type:varchar(20)"`
	GoldenServed bool   `gorm:"default:false"`
	CacheHit     bool   `gorm:"default:false"`
	Streamed     bool   `gorm:"default:false"`

	Provider         string `gorm:"type:varchar(40)"`
	Model            string `gorm:"type:varchar(120)"`
	PromptTokens     int    `gorm:"default:0"`
	CompletionTokens int    `gorm:"default:0"`
	ToolRounds       int    `gorm:"default:0"`

	DurationMs int64 `gorm:"default:0"`

	Decisions   datatypes.JSON `gorm:"type:jsonb"`
	Metrics     datatypes.JSON `gorm:"type:jsonb"`
	NodeHistory datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
