package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/contract"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/pkg/embedding"

	"github.com/google/uuid"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type stubKBRepo struct {
	contract.KBDocumentRepository
	hybridRows  []*contract.HybridSearchRow
	hybridErr   error
	lexicalRows []*contract.HybridSearchRow
	lexicalErr  error
}

func (s *stubKBRepo) SearchHybrid(ctx context.Context, query string, emb []float32, limit int) ([]*contract.HybridSearchRow, error) {
	return s.hybridRows, s.hybridErr
}

func (s *stubKBRepo) SearchLexical(ctx context.Context, query string, limit int) ([]*contract.HybridSearchRow, error) {
	return s.lexicalRows, s.lexicalErr
}

type stubUoW struct {
	unitofwork.UnitOfWork
	kb *stubKBRepo
}

func (s *stubUoW) KBDocumentRepository() contract.KBDocumentRepository {
	return s.kb
}

func row(title string, fts, similarity float64, effectiveAt time.Time) *contract.HybridSearchRow {
	return &contract.HybridSearchRow{
		Document: &entity.KBDocument{
			Id:          uuid.New(),
			Title:       title,
			Content:     "body of " + title,
			Source:      "Labor Code §1",
			EffectiveAt: effectiveAt,
		},
		FTSRank:    fts,
		Similarity: similarity,
	}
}

func newTestSearcher(embedder embedding.EmbeddingProvider) *Searcher {
	return NewSearcher(embedder, DefaultConfig(), log.New(io.Discard, "", 0))
}

func TestExecuteHybrid(t *testing.T) {
	now := time.Now()
	uow := &stubUoW{kb: &stubKBRepo{
		hybridRows: []*contract.HybridSearchRow{
			row("weaker", 0.4, 0.5, now),
			row("stronger", 0.9, 0.95, now),
		},
	}}

	res, err := newTestSearcher(&stubEmbedder{}).Execute(context.Background(), uow, "overtime cap", now)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Degraded {
		t.Errorf("healthy hybrid search flagged degraded (cause %q)", res.Cause)
	}
	if len(res.Passages) != 2 || res.Passages[0].Title != "stronger" {
		t.Errorf("ranking = %v", ids(res.Passages))
	}
}

func TestExecuteEmbeddingOutageDegradesToLexical(t *testing.T) {
	now := time.Now()
	uow := &stubUoW{kb: &stubKBRepo{
		hybridErr:   errors.New("must not be reached without an embedding"),
		lexicalRows: []*contract.HybridSearchRow{row("fts only", 0.9, 0, now)},
	}}

	res, err := newTestSearcher(&stubEmbedder{err: errors.New("provider down")}).
		Execute(context.Background(), uow, "overtime cap", now)
	if err != nil {
		t.Fatalf("degraded search must not fail the caller: %v", err)
	}
	if !res.Degraded || res.Cause != "embedding_failed" {
		t.Errorf("degraded=%v cause=%q", res.Degraded, res.Cause)
	}
	if len(res.Passages) != 1 {
		t.Fatalf("lexical fallback returned %d passages, want 1", len(res.Passages))
	}
}

func TestExecuteVectorFailureDegradesToLexical(t *testing.T) {
	now := time.Now()
	uow := &stubUoW{kb: &stubKBRepo{
		hybridErr:   errors.New("pgvector operator missing"),
		lexicalRows: []*contract.HybridSearchRow{row("fts only", 0.8, 0, now)},
	}}

	res, err := newTestSearcher(&stubEmbedder{}).Execute(context.Background(), uow, "overtime cap", now)
	if err != nil {
		t.Fatalf("degraded search must not fail the caller: %v", err)
	}
	if !res.Degraded || res.Cause != "vector_search_failed" {
		t.Errorf("degraded=%v cause=%q", res.Degraded, res.Cause)
	}
}

func TestExecuteBothPathsFailing(t *testing.T) {
	uow := &stubUoW{kb: &stubKBRepo{
		hybridErr:  errors.New("vector down"),
		lexicalErr: errors.New("fts down"),
	}}

	if _, err := newTestSearcher(&stubEmbedder{}).Execute(context.Background(), uow, "overtime cap", time.Now()); err == nil {
		t.Fatal("expected an error once every search path is exhausted")
	}
}
