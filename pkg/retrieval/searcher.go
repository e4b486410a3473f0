package retrieval

import (
	"context"
	"fmt"
	"log"
	"time"

	"regassist-be/internal/repository/contract"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/pkg/embedding"
)

// Searcher handles hybrid KB search: embed the query, pull raw signal rows
// from the repository, rank them. Embedding or vector failure degrades to
// lexical ranking instead of failing the caller.
type Searcher struct {
	embeddingProvider embedding.EmbeddingProvider
	scorer            *Scorer
	config            Config
	logger            *log.Logger
}

func NewSearcher(embeddingProvider embedding.EmbeddingProvider, config Config, logger *log.Logger) *Searcher {
	return &Searcher{
		embeddingProvider: embeddingProvider,
		scorer:            NewScorer(config, logger),
		config:            config,
		logger:            logger,
	}
}

// Result carries ranked passages plus how the ranking was produced.
type Result struct {
	Passages []Scored

	// Degraded is true when the vector signal was unavailable and ranking
	// fell back to full-text only.
	Degraded bool
	Cause    string
}

// Execute runs hybrid search for one query.
func (s *Searcher) Execute(ctx context.Context, uow unitofwork.UnitOfWork, query string, now time.Time) (*Result, error) {
	embeddingRes, err := s.embeddingProvider.Generate(query, embedding.TaskQuery)
	if err != nil {
		s.logger.Printf("[WARN] Embedding generation failed, degrading to lexical ranking: %v", err)
		return s.lexical(ctx, uow, query, now, "embedding_failed")
	}

	rows, err := uow.KBDocumentRepository().SearchHybrid(ctx, query, embeddingRes.Embedding.Values, s.config.TopK)
	if err != nil {
		s.logger.Printf("[WARN] Hybrid search failed, degrading to lexical ranking: %v", err)
		return s.lexical(ctx, uow, query, now, "vector_search_failed")
	}

	candidates := rowsToCandidates(rows)
	s.logger.Printf("[DEBUG] Raw search results: %d documents", len(candidates))

	return &Result{
		Passages: s.scorer.Rank(candidates, now),
	}, nil
}

func (s *Searcher) lexical(ctx context.Context, uow unitofwork.UnitOfWork, query string, now time.Time, cause string) (*Result, error) {
	rows, err := uow.KBDocumentRepository().SearchLexical(ctx, query, s.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed after %s: %w", cause, err)
	}

	return &Result{
		Passages: s.scorer.RankLexical(rowsToCandidates(rows), now),
		Degraded: true,
		Cause:    cause,
	}, nil
}

func rowsToCandidates(rows []*contract.HybridSearchRow) []Candidate {
	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		if row.Document == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:         row.Document.Id.String(),
			Title:      row.Document.Title,
			Content:    row.Document.Content,
			Source:     row.Document.Source,
			FTSRank:    row.FTSRank,
			Similarity: row.Similarity,
			UpdatedAt:  row.Document.EffectiveAt,
		})
	}
	return candidates
}
