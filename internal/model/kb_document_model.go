package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KBDocument rows also carry a generated tsvector column (search_vector)
// plus a GIN index, created by the migration tool; hybrid search queries it
// raw, so the model does not map it.
type KBDocument struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string         `gorm:"type:varchar(255);not null"`
	Content     string         `gorm:"type:text;not null"`
	Source      string         `gorm:"type:varchar(255);index"`
	Category    string         `gorm:"type:varchar(120);index"`
	EffectiveAt time.Time      `gorm:"not null;index"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (KBDocument) TableName() string {
	return "kb_documents"
}
