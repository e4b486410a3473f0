package contract

import (
	"context"
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

// HybridSearchRow carries one KB document with its raw retrieval signals.
// The scorer combines them; the repository only reports them.
type HybridSearchRow struct {
	Document *entity.KBDocument

	// FTSRank is ts_rank_cd normalized into [0,1) via rank/(rank+1).
	FTSRank float64

	// Similarity is 1 - cosine distance of the best matching chunk, zero
	// when the row matched on text only.
	Similarity float64
}

type KBDocumentRepository interface {
	Create(ctx context.Context, doc *entity.KBDocument) error
	Update(ctx context.Context, doc *entity.KBDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KBDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchHybrid unions full-text and vector matches for one query.
	SearchHybrid(ctx context.Context, query string, embedding []float32, limit int) ([]*HybridSearchRow, error)
	// SearchLexical is the degraded path when no embedding is available.
	SearchLexical(ctx context.Context, query string, limit int) ([]*HybridSearchRow, error)
	// FindChangedSince lists documents whose regulation took effect after
	// the given time, optionally narrowed by category.
	FindChangedSince(ctx context.Context, since time.Time, category string, limit int) ([]*entity.KBDocument, error)
}
