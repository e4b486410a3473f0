package mapper

import (
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/model"

	"gorm.io/gorm"
)

type GoldenMapper struct{}

func NewGoldenMapper() *GoldenMapper {
	return &GoldenMapper{}
}

func (m *GoldenMapper) ToEntity(g *model.GoldenAnswer) *entity.GoldenAnswer {
	if g == nil {
		return nil
	}

	var deletedAt *time.Time
	if g.DeletedAt.Valid {
		t := g.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !g.UpdatedAt.IsZero() {
		t := g.UpdatedAt
		updatedAt = &t
	}

	return &entity.GoldenAnswer{
		Id:          g.Id,
		Question:    g.Question,
		Answer:      g.Answer,
		Topic:       g.Topic,
		EffectiveAt: g.EffectiveAt,
		Active:      g.Active,
		CuratorId:   g.CuratorId,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   g.DeletedAt.Valid,
	}
}

func (m *GoldenMapper) ToModel(g *entity.GoldenAnswer) *model.GoldenAnswer {
	if g == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if g.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *g.DeletedAt, Valid: true}
	} else if g.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if g.UpdatedAt != nil {
		updatedAt = *g.UpdatedAt
	}

	return &model.GoldenAnswer{
		Id:          g.Id,
		Question:    g.Question,
		Answer:      g.Answer,
		Topic:       g.Topic,
		EffectiveAt: g.EffectiveAt,
		Active:      g.Active,
		CuratorId:   g.CuratorId,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *GoldenMapper) ToEntities(answers []*model.GoldenAnswer) []*entity.GoldenAnswer {
	entities := make([]*entity.GoldenAnswer, len(answers))
	for i, g := range answers {
		entities[i] = m.ToEntity(g)
	}
	return entities
}

// Citation Mappers

func (m *GoldenMapper) CitationToEntity(c *model.GoldenCitation) *entity.GoldenCitation {
	if c == nil {
		return nil
	}
	return &entity.GoldenCitation{
		Id:             c.Id,
		GoldenAnswerId: c.GoldenAnswerId,
		KBDocumentId:   c.KBDocumentId,
		Label:          c.Label,
		CreatedAt:      c.CreatedAt,
	}
}

func (m *GoldenMapper) CitationToModel(c *entity.GoldenCitation) *model.GoldenCitation {
	if c == nil {
		return nil
	}
	return &model.GoldenCitation{
		Id:             c.Id,
		GoldenAnswerId: c.GoldenAnswerId,
		KBDocumentId:   c.KBDocumentId,
		Label:          c.Label,
		CreatedAt:      c.CreatedAt,
	}
}

func (m *GoldenMapper) CitationsToEntities(citations []*model.GoldenCitation) []*entity.GoldenCitation {
	entities := make([]*entity.GoldenCitation, len(citations))
	for i, c := range citations {
		entities[i] = m.CitationToEntity(c)
	}
	return entities
}
