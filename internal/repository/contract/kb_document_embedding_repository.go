package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// KBChunk is one embedded chunk row, used by ingestion and re-indexing.
type KBChunk struct {
	Id           uuid.UUID
	KBDocumentId uuid.UUID
	Chunk        string
	ChunkIndex   int
	Embedding    pgvector.Vector
}

type KBDocumentEmbeddingRepository interface {
	CreateBulk(ctx context.Context, chunks []*KBChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error)
}
