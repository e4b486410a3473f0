package implementation

import (
	"context"

	"regassist-be/internal/model"
	"regassist-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KBDocumentEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewKBDocumentEmbeddingRepository(db *gorm.DB) contract.KBDocumentEmbeddingRepository {
	return &KBDocumentEmbeddingRepositoryImpl{db: db}
}

func (r *KBDocumentEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, chunks []*contract.KBChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.KBDocumentEmbedding, len(chunks))
	for i, c := range chunks {
		models[i] = &model.KBDocumentEmbedding{
			Id:             c.Id,
			KBDocumentId:   c.KBDocumentId,
			Chunk:          c.Chunk,
			ChunkIndex:     c.ChunkIndex,
			EmbeddingValue: c.Embedding,
		}
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		chunks[i].Id = m.Id
	}
	return nil
}

func (r *KBDocumentEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("kb_document_id = ?", documentId).
		Delete(&model.KBDocumentEmbedding{}).Error
}

func (r *KBDocumentEmbeddingRepositoryImpl) CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.KBDocumentEmbedding{}).
		Where("kb_document_id = ?", documentId).
		Count(&count).Error
	return count, err
}
