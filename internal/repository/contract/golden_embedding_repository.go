package contract

import (
	"context"

	"regassist-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredGoldenAnswer pairs a golden answer with the similarity of its
// question embedding against the query.
type ScoredGoldenAnswer struct {
	Answer     *entity.GoldenAnswer
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type GoldenEmbeddingRepository interface {
	Upsert(ctx context.Context, answerId uuid.UUID, embedding []float32) error
	DeleteByAnswerId(ctx context.Context, answerId uuid.UUID) error
	// SearchSimilarWithScore joins golden_answers so callers get hydrated
	// answers; only active, non-deleted answers are matched.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredGoldenAnswer, error)
}
