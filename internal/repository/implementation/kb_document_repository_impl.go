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
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KBDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KBDocumentMapper
}

func NewKBDocumentRepository(db *gorm.DB) contract.KBDocumentRepository {
	return &KBDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewKBDocumentMapper(),
	}
}

func (r *KBDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KBDocumentRepositoryImpl) Create(ctx context.Context, doc *entity.KBDocument) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *KBDocumentRepositoryImpl) Update(ctx context.Context, doc *entity.KBDocument) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *KBDocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KBDocument{}, id).Error
}

func (r *KBDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KBDocument, error) {
	var m model.KBDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *KBDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBDocument, error) {
	var models []*model.KBDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *KBDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KBDocument{}).Count(&count).Error
	return count, err
}

type ftsRow struct {
	model.KBDocument
	Rank float64
}

type vectorRow struct {
	model.KBDocument
	Similarity float64
}

// SearchHybrid runs the full-text and vector queries separately and unions
// the rows by document id. A document matched by both carries both signals;
// matched by one, the other signal stays zero for the scorer to weigh.
func (r *KBDocumentRepositoryImpl) SearchHybrid(ctx context.Context, query string, embedding []float32, limit int) ([]*contract.HybridSearchRow, error) {
	if limit <= 0 {
		limit = 10
	}

	ftsRows, err := r.searchFTS(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	queryVector := pgvector.NewVector(embedding)
	var vecRows []vectorRow
	err = r.db.WithContext(ctx).
		Table("kb_document_embeddings").
		Select("kb_documents.*, MAX(1 - (embedding_value <=> ?)) as similarity", queryVector).
		Joins("JOIN kb_documents ON kb_documents.id = kb_document_embeddings.kb_document_id").
		Where("kb_document_embeddings.deleted_at IS NULL").
		Where("kb_documents.deleted_at IS NULL").
		Group("kb_documents.id").
		Order("similarity DESC").
		Limit(limit).
		Scan(&vecRows).Error
	if err != nil {
		return nil, err
	}

	// Union by id, keeping FTS order first so merged output is stable.
	merged := make([]*contract.HybridSearchRow, 0, len(ftsRows)+len(vecRows))
	index := make(map[uuid.UUID]*contract.HybridSearchRow)

	for _, row := range ftsRows {
		h := &contract.HybridSearchRow{
			Document: r.mapper.ToEntity(&row.KBDocument),
			FTSRank:  normalizeRank(row.Rank),
		}
		index[row.Id] = h
		merged = append(merged, h)
	}
	for i := range vecRows {
		row := vecRows[i]
		if h, ok := index[row.Id]; ok {
			h.Similarity = row.Similarity
			continue
		}
		merged = append(merged, &contract.HybridSearchRow{
			Document:   r.mapper.ToEntity(&row.KBDocument),
			Similarity: row.Similarity,
		})
	}
	return merged, nil
}

// SearchLexical returns text matches only, for when no embedding exists.
func (r *KBDocumentRepositoryImpl) SearchLexical(ctx context.Context, query string, limit int) ([]*contract.HybridSearchRow, error) {
	if limit <= 0 {
		limit = 10
	}
	ftsRows, err := r.searchFTS(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*contract.HybridSearchRow, len(ftsRows))
	for i := range ftsRows {
		out[i] = &contract.HybridSearchRow{
			Document: r.mapper.ToEntity(&ftsRows[i].KBDocument),
			FTSRank:  normalizeRank(ftsRows[i].Rank),
		}
	}
	return out, nil
}

// searchFTS queries the generated search_vector column (created by the
// migration tool together with its GIN index).
func (r *KBDocumentRepositoryImpl) searchFTS(ctx context.Context, query string, limit int) ([]ftsRow, error) {
	var rows []ftsRow
	err := r.db.WithContext(ctx).
		Table("kb_documents").
		Select("kb_documents.*, ts_rank_cd(search_vector, plainto_tsquery('english', ?)) as rank", query).
		Where("search_vector @@ plainto_tsquery('english', ?)", query).
		Where("kb_documents.deleted_at IS NULL").
		Order("rank DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *KBDocumentRepositoryImpl) FindChangedSince(ctx context.Context, since time.Time, category string, limit int) ([]*entity.KBDocument, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.WithContext(ctx).
		Where("effective_at > ?", since)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var models []*model.KBDocument
	err := query.
		Order("effective_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

// normalizeRank maps ts_rank_cd's unbounded output into [0,1).
func normalizeRank(rank float64) float64 {
	if rank <= 0 {
		return 0
	}
	return rank / (rank + 1)
}
