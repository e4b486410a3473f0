package implementation

import (
	"context"

	"regassist-be/internal/entity"
	"regassist-be/internal/mapper"
	"regassist-be/internal/model"
	"regassist-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoldenCitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GoldenMapper
}

func NewGoldenCitationRepository(db *gorm.DB) contract.GoldenCitationRepository {
	return &GoldenCitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewGoldenMapper(),
	}
}

func (r *GoldenCitationRepositoryImpl) Create(ctx context.Context, citation *entity.GoldenCitation) error {
	m := r.mapper.CitationToModel(citation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*citation = *r.mapper.CitationToEntity(m)
	return nil
}

func (r *GoldenCitationRepositoryImpl) CreateBulk(ctx context.Context, citations []*entity.GoldenCitation) error {
	if len(citations) == 0 {
		return nil
	}
	models := make([]*model.GoldenCitation, len(citations))
	for i, c := range citations {
		models[i] = r.mapper.CitationToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*citations[i] = *r.mapper.CitationToEntity(m)
	}
	return nil
}

func (r *GoldenCitationRepositoryImpl) FindAllByAnswerId(ctx context.Context, answerId uuid.UUID) ([]*entity.GoldenCitation, error) {
	var models []*model.GoldenCitation
	err := r.db.WithContext(ctx).
		Where("golden_answer_id = ?", answerId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.CitationsToEntities(models), nil
}

func (r *GoldenCitationRepositoryImpl) DeleteByAnswerId(ctx context.Context, answerId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("golden_answer_id = ?", answerId).
		Delete(&model.GoldenCitation{}).Error
}
