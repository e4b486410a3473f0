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

type ExpertProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExpertProfileMapper
}

func NewExpertProfileRepository(db *gorm.DB) contract.ExpertProfileRepository {
	return &ExpertProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewExpertProfileMapper(),
	}
}

func (r *ExpertProfileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ExpertProfileRepositoryImpl) Create(ctx context.Context, profile *entity.ExpertProfile) error {
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExpertProfileRepositoryImpl) Update(ctx context.Context, profile *entity.ExpertProfile) error {
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExpertProfileRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ExpertProfile{}, id).Error
}

func (r *ExpertProfileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ExpertProfile, error) {
	var m model.ExpertProfile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ExpertProfileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ExpertProfile, error) {
	var models []*model.ExpertProfile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ExpertProfile, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ExpertProfileRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.ExpertProfile, error) {
	var m model.ExpertProfile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ExpertProfileRepositoryImpl) IncrementReviewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ExpertProfile{}).
		Where("id = ?", id).
		UpdateColumn("review_count", gorm.Expr("review_count + 1")).Error
}
