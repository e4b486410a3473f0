package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QAMessage struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QASessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role        string         `gorm:"type:varchar(20);not null"`
	Content     string         `gorm:"type:text;not null"`
	RequestId   string         `gorm:"type:varchar(64);index"`
	AnswerPath  string         `gorm:"type:varchar(20)"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (QAMessage) TableName() string {
	return "qa_messages"
}
