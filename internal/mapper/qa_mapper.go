package mapper

import (
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/model"

	"gorm.io/gorm"
)

type QAMapper struct{}

func NewQAMapper() *QAMapper {
	return &QAMapper{}
}

// Session Mappers

func (m *QAMapper) SessionToEntity(s *model.QASession) *entity.QASession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.QASession{
		Id:        s.Id,
		ClientKey: s.ClientKey,
		Title:     s.Title,
		Anonymous: s.Anonymous,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *QAMapper) SessionToModel(s *entity.QASession) *model.QASession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.QASession{
		Id:        s.Id,
		ClientKey: s.ClientKey,
		Title:     s.Title,
		Anonymous: s.Anonymous,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Message Mappers

func (m *QAMapper) MessageToEntity(msg *model.QAMessage) *entity.QAMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.QAMessage{
		Id:          msg.Id,
		QASessionId: msg.QASessionId,
		Role:        msg.Role,
		Content:     msg.Content,
		RequestId:   msg.RequestId,
		AnswerPath:  msg.AnswerPath,
		CreatedAt:   msg.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   msg.DeletedAt.Valid,
	}
}

func (m *QAMapper) MessageToModel(msg *entity.QAMessage) *model.QAMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.QAMessage{
		Id:          msg.Id,
		QASessionId: msg.QASessionId,
		Role:        msg.Role,
		Content:     msg.Content,
		RequestId:   msg.RequestId,
		AnswerPath:  msg.AnswerPath,
		CreatedAt:   msg.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *QAMapper) MessagesToEntities(msgs []*model.QAMessage) []*entity.QAMessage {
	entities := make([]*entity.QAMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

// Citation Mappers

func (m *QAMapper) CitationToEntity(c *model.QACitation) *entity.QACitation {
	if c == nil {
		return nil
	}
	return &entity.QACitation{
		Id:           c.Id,
		QAMessageId:  c.QAMessageId,
		KBDocumentId: c.KBDocumentId,
		Label:        c.Label,
		CreatedAt:    c.CreatedAt,
	}
}

func (m *QAMapper) CitationToModel(c *entity.QACitation) *model.QACitation {
	if c == nil {
		return nil
	}
	return &model.QACitation{
		Id:           c.Id,
		QAMessageId:  c.QAMessageId,
		KBDocumentId: c.KBDocumentId,
		Label:        c.Label,
		CreatedAt:    c.CreatedAt,
	}
}
