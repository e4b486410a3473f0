package implementation

import (
	"context"
	"errors"
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/mapper"
	"regassist-be/internal/model"
	"regassist-be/internal/repository/contract"
	"regassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LaborAgreementRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LaborAgreementMapper
}

func NewLaborAgreementRepository(db *gorm.DB) contract.LaborAgreementRepository {
	return &LaborAgreementRepositoryImpl{
		db:     db,
		mapper: mapper.NewLaborAgreementMapper(),
	}
}

func (r *LaborAgreementRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LaborAgreementRepositoryImpl) Create(ctx context.Context, agreement *entity.LaborAgreement) error {
	m := r.mapper.ToModel(agreement)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*agreement = *r.mapper.ToEntity(m)
	return nil
}

func (r *LaborAgreementRepositoryImpl) Update(ctx context.Context, agreement *entity.LaborAgreement) error {
	m := r.mapper.ToModel(agreement)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*agreement = *r.mapper.ToEntity(m)
	return nil
}

func (r *LaborAgreementRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.LaborAgreement{}, id).Error
}

func (r *LaborAgreementRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LaborAgreement, error) {
	var m model.LaborAgreement
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LaborAgreementRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LaborAgreement, error) {
	var models []*model.LaborAgreement
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *LaborAgreementRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.LaborAgreement{}).Count(&count).Error
	return count, err
}

func (r *LaborAgreementRepositoryImpl) FindApplicable(ctx context.Context, sector, region string, at time.Time, limit int) ([]*entity.LaborAgreement, error) {
	if limit <= 0 {
		limit = 10
	}
	query := r.db.WithContext(ctx).
		Where("valid_from <= ?", at).
		Where("valid_until IS NULL OR valid_until >= ?", at)
	if sector != "" {
		query = query.Where("sector = ?", sector)
	}
	if region != "" {
		// National agreements apply everywhere.
		query = query.Where("region = ? OR scope = 'national'", region)
	}

	var models []*model.LaborAgreement
	err := query.
		Order("valid_from DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
