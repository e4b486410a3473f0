package mapper

import (
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/model"

	"gorm.io/gorm"
)

type ExpertProfileMapper struct{}

func NewExpertProfileMapper() *ExpertProfileMapper {
	return &ExpertProfileMapper{}
}

func (m *ExpertProfileMapper) ToEntity(e *model.ExpertProfile) *entity.ExpertProfile {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ExpertProfile{
		Id:          e.Id,
		DisplayName: e.DisplayName,
		Email:       e.Email,
		Specialty:   e.Specialty,
		TrustScore:  e.TrustScore,
		ReviewCount: e.ReviewCount,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *ExpertProfileMapper) ToModel(e *entity.ExpertProfile) *model.ExpertProfile {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ExpertProfile{
		Id:          e.Id,
		DisplayName: e.DisplayName,
		Email:       e.Email,
		Specialty:   e.Specialty,
		TrustScore:  e.TrustScore,
		ReviewCount: e.ReviewCount,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
