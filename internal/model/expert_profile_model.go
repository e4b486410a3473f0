package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpertProfile struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayName string         `gorm:"type:varchar(255);not null"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Specialty   string         `gorm:"type:varchar(120)"`
	TrustScore  float64        `gorm:"type:numeric(4,3);default:0"`
	ReviewCount int            `gorm:"default:0"`
	Active      bool           `gorm:"default:true"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (ExpertProfile) TableName() string {
	return "expert_profiles"
}
