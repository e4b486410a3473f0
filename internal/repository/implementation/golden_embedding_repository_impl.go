package implementation

import (
	"context"

	"regassist-be/internal/mapper"
	"regassist-be/internal/model"
	"regassist-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GoldenEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GoldenMapper
}

func NewGoldenEmbeddingRepository(db *gorm.DB) contract.GoldenEmbeddingRepository {
	return &GoldenEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewGoldenMapper(),
	}
}

// Upsert writes the question embedding, replacing the previous vector when
// the answer is re-vetted.
func (r *GoldenEmbeddingRepositoryImpl) Upsert(ctx context.Context, answerId uuid.UUID, embedding []float32) error {
	m := &model.GoldenEmbedding{
		GoldenAnswerId: answerId,
		EmbeddingValue: pgvector.NewVector(embedding),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "golden_answer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding_value", "updated_at"}),
		}).
		Create(m).Error
}

func (r *GoldenEmbeddingRepositoryImpl) DeleteByAnswerId(ctx context.Context, answerId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("golden_answer_id = ?", answerId).
		Delete(&model.GoldenEmbedding{}).Error
}

// SearchSimilarWithScore returns active golden answers with similarity scores, filtered by threshold
func (r *GoldenEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredGoldenAnswer, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.GoldenAnswer
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("golden_embeddings").
		Select("golden_answers.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN golden_answers ON golden_answers.id = golden_embeddings.golden_answer_id").
		Where("golden_answers.active = ?", true).
		Where("golden_embeddings.deleted_at IS NULL").
		Where("golden_answers.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredGoldenAnswer, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredGoldenAnswer{
			Answer:     r.mapper.ToEntity(&res.GoldenAnswer),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
