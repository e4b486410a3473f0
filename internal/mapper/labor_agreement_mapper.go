package mapper

import (
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/model"

	"gorm.io/gorm"
)

type LaborAgreementMapper struct{}

func NewLaborAgreementMapper() *LaborAgreementMapper {
	return &LaborAgreementMapper{}
}

func (m *LaborAgreementMapper) ToEntity(a *model.LaborAgreement) *entity.LaborAgreement {
	if a == nil {
		return nil
	}

	var deletedAt *time.Time
	if a.DeletedAt.Valid {
		t := a.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}

	return &entity.LaborAgreement{
		Id:         a.Id,
		Name:       a.Name,
		Sector:     a.Sector,
		Region:     a.Region,
		Scope:      a.Scope,
		ValidFrom:  a.ValidFrom,
		ValidUntil: a.ValidUntil,
		Summary:    a.Summary,
		SourceURL:  a.SourceURL,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  a.DeletedAt.Valid,
	}
}

func (m *LaborAgreementMapper) ToModel(a *entity.LaborAgreement) *model.LaborAgreement {
	if a == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if a.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	} else if a.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	return &model.LaborAgreement{
		Id:         a.Id,
		Name:       a.Name,
		Sector:     a.Sector,
		Region:     a.Region,
		Scope:      a.Scope,
		ValidFrom:  a.ValidFrom,
		ValidUntil: a.ValidUntil,
		Summary:    a.Summary,
		SourceURL:  a.SourceURL,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *LaborAgreementMapper) ToEntities(agreements []*model.LaborAgreement) []*entity.LaborAgreement {
	entities := make([]*entity.LaborAgreement, len(agreements))
	for i, a := range agreements {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
