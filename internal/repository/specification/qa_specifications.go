package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByQASessionID struct {
	QASessionID uuid.UUID
}

func (s ByQASessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("qa_session_id = ?", s.QASessionID)
}

type ByClientKey struct {
	ClientKey string
}

func (s ByClientKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("client_key = ?", s.ClientKey)
}

type ByRequestID struct {
	RequestID string
}

func (s ByRequestID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("request_id = ?", s.RequestID)
}
