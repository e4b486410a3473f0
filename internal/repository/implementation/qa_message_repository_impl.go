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

type QAMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QAMapper
}

func NewQAMessageRepository(db *gorm.DB) contract.QAMessageRepository {
	return &QAMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewQAMapper(),
	}
}

func (r *QAMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QAMessageRepositoryImpl) Create(ctx context.Context, message *entity.QAMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *QAMessageRepositoryImpl) Update(ctx context.Context, message *entity.QAMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *QAMessageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.QAMessage{}, id).Error
}

func (r *QAMessageRepositoryImpl) DeleteByQASessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("qa_session_id = ?", sessionId).
		Delete(&model.QAMessage{}).Error
}

func (r *QAMessageRepositoryImpl) CreateCitations(ctx context.Context, citations []*entity.QACitation) error {
	if len(citations) == 0 {
		return nil
	}
	models := make([]*model.QACitation, len(citations))
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

func (r *QAMessageRepositoryImpl) FindCitationsByMessageIds(ctx context.Context, messageIds []uuid.UUID) ([]*entity.QACitation, error) {
	if len(messageIds) == 0 {
		return nil, nil
	}
	var models []*model.QACitation
	err := r.db.WithContext(ctx).
		Where("qa_message_id IN ?", messageIds).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	citations := make([]*entity.QACitation, len(models))
	for i, m := range models {
		citations[i] = r.mapper.CitationToEntity(m)
	}
	return citations, nil
}

func (r *QAMessageRepositoryImpl) FindByRequestId(ctx context.Context, requestId string) (*entity.QAMessage, error) {
	var m model.QAMessage
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *QAMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QAMessage, error) {
	var m model.QAMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *QAMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QAMessage, error) {
	var models []*model.QAMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models), nil
}

func (r *QAMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.QAMessage{}).Count(&count).Error
	return count, err
}
