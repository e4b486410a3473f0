package mapper

import (
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/model"

	"gorm.io/gorm"
)

type KBDocumentMapper struct{}

func NewKBDocumentMapper() *KBDocumentMapper {
	return &KBDocumentMapper{}
}

func (m *KBDocumentMapper) ToEntity(d *model.KBDocument) *entity.KBDocument {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.KBDocument{
		Id:          d.Id,
		Title:       d.Title,
		Content:     d.Content,
		Source:      d.Source,
		Category:    d.Category,
		EffectiveAt: d.EffectiveAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   d.DeletedAt.Valid,
	}
}

func (m *KBDocumentMapper) ToModel(d *entity.KBDocument) *model.KBDocument {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.KBDocument{
		Id:          d.Id,
		Title:       d.Title,
		Content:     d.Content,
		Source:      d.Source,
		Category:    d.Category,
		EffectiveAt: d.EffectiveAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *KBDocumentMapper) ToEntities(docs []*model.KBDocument) []*entity.KBDocument {
	entities := make([]*entity.KBDocument, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
