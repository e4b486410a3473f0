package implementation

import (
	"context"
	"errors"

	"regassist-be/internal/entity"
	"regassist-be/internal/mapper"
	"regassist-be/internal/model"
	"regassist-be/internal/repository/contract"
	"regassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoldenAnswerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GoldenMapper
}

func NewGoldenAnswerRepository(db *gorm.DB) contract.GoldenAnswerRepository {
	return &GoldenAnswerRepositoryImpl{
		db:     db,
		mapper: mapper.NewGoldenMapper(),
	}
}

func (r *GoldenAnswerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GoldenAnswerRepositoryImpl) Create(ctx context.Context, answer *entity.GoldenAnswer) error {
	m := r.mapper.ToModel(answer)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*answer = *r.mapper.ToEntity(m)
	return nil
}

func (r *GoldenAnswerRepositoryImpl) Update(ctx context.Context, answer *entity.GoldenAnswer) error {
	m := r.mapper.ToModel(answer)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*answer = *r.mapper.ToEntity(m)
	return nil
}

func (r *GoldenAnswerRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GoldenAnswer{}, id).Error
}

func (r *GoldenAnswerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GoldenAnswer, error) {
	var m model.GoldenAnswer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GoldenAnswerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GoldenAnswer, error) {
	var models []*model.GoldenAnswer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *GoldenAnswerRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.GoldenAnswer{}).Count(&count).Error
	return count, err
}

func (r *GoldenAnswerRepositoryImpl) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.GoldenAnswer{}).
		Where("active = ?", true).
		Count(&count).Error
	return count, err
}
