package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LaborAgreement struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string         `gorm:"type:varchar(255);not null"`
	Sector     string         `gorm:"type:varchar(120);index"`
	Region     string         `gorm:"type:varchar(120);index"`
	Scope      string         `gorm:"type:varchar(40);default:'sector'"`
	ValidFrom  time.Time      `gorm:"not null"`
	ValidUntil *time.Time     ``
	Summary    string         `gorm:"type:text"`
	SourceURL  string         `gorm:"type:varchar(512)"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (LaborAgreement) TableName() string {
	return "labor_agreements"
}
