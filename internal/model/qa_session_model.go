package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QASession struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientKey string         `gorm:"type:varchar(128);not null;index"` // Asker identity for history isolation
	Title     string         `gorm:"type:text;not null"`
	Anonymous bool           `gorm:"default:false"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (QASession) TableName() string {
	return "qa_sessions"
}
