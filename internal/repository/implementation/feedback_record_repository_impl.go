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

type FeedbackRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeedbackMapper
}

func NewFeedbackRecordRepository(db *gorm.DB) contract.FeedbackRecordRepository {
	return &FeedbackRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeedbackMapper(),
	}
}

func (r *FeedbackRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FeedbackRecordRepositoryImpl) Create(ctx context.Context, record *entity.FeedbackRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeedbackRecordRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FeedbackRecord{}, id).Error
}

func (r *FeedbackRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FeedbackRecord, error) {
	var m model.FeedbackRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeedbackRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FeedbackRecord, error) {
	var models []*model.FeedbackRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FeedbackRecordRepositoryImpl) FindAllByResponseId(ctx context.Context, responseId string) ([]*entity.FeedbackRecord, error) {
	var models []*model.FeedbackRecord
	err := r.db.WithContext(ctx).
		Where("response_id = ?", responseId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FeedbackRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.FeedbackRecord{}).Count(&count).Error
	return count, err
}
