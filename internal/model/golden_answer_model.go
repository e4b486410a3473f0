package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoldenAnswer struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Question    string         `gorm:"type:text;not null"`
	Answer      string         `gorm:"type:text;not null"`
	Topic       string         `gorm:"type:varchar(120);index"`
	EffectiveAt time.Time      `gorm:"not null;index"`
	Active      bool           `gorm:"default:true;index"`
	CuratorId   *uuid.UUID     `gorm:"type:uuid"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (GoldenAnswer) TableName() string {
	return "golden_answers"
}
