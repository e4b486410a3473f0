package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"regassist-be/internal/dto"
	"regassist-be/internal/entity"
	"regassist-be/internal/repository/specification"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/pkg/embedding"

	"github.com/google/uuid"
)

type IGoldenService interface {
	Create(ctx context.Context, curatorId uuid.UUID, req *dto.CreateGoldenAnswerRequest) (*dto.GoldenAnswerResponse, error)
	Update(ctx context.Context, req *dto.UpdateGoldenAnswerRequest) (*dto.GoldenAnswerResponse, error)
	Verify(ctx context.Context, req *dto.VerifyGoldenAnswerRequest) (*dto.GoldenAnswerResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.GoldenAnswerResponse, error)
	List(ctx context.Context, topic string) ([]*dto.GoldenAnswerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// goldenService manages the curated answer store. Every write keeps the
// question embedding in sync so the lookup engine ranks against current
// text.
type goldenService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewGoldenService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IGoldenService {
	return &goldenService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (gs *goldenService) Create(ctx context.Context, curatorId uuid.UUID, req *dto.CreateGoldenAnswerRequest) (*dto.GoldenAnswerResponse, error) {
	uow := gs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	effectiveAt := now
	if req.EffectiveAt != nil {
		effectiveAt = *req.EffectiveAt
	}

	answer := entity.GoldenAnswer{
		Id:          uuid.New(),
		Question:    req.Question,
		Answer:      req.Answer,
		Topic:       req.Topic,
		EffectiveAt: effectiveAt,
		Active:      true,
		CreatedAt:   now,
	}
	// Service-key imports carry no staff identity; leave the curator unset.
	if curatorId != uuid.Nil {
		answer.CuratorId = &curatorId
	}

	// Embed before opening the transaction; the provider call is the slow
	// part and must not hold a DB connection.
	res, err := gs.embeddingProvider.Generate(req.Question, embedding.TaskDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to embed golden question: %w", err)
	}

	citations, err := gs.resolveCitations(ctx, uow, answer.Id, req.Citations, now)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.GoldenAnswerRepository().Create(ctx, &answer); err != nil {
		return nil, err
	}
	if err := uow.GoldenEmbeddingRepository().Upsert(ctx, answer.Id, res.Embedding.Values); err != nil {
		return nil, err
	}
	if len(citations) > 0 {
		if err := uow.GoldenCitationRepository().CreateBulk(ctx, citations); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[GOLDEN] created answer %s topic=%q citations=%d", answer.Id, answer.Topic, len(citations))
	return gs.toResponse(&answer, citations), nil
}

func (gs *goldenService) Update(ctx context.Context, req *dto.UpdateGoldenAnswerRequest) (*dto.GoldenAnswerResponse, error) {
	uow := gs.uowFactory.NewUnitOfWork(ctx)

	answer, err := gs.findAnswer(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reembed := false

	if req.Question != "" && req.Question != answer.Question {
		answer.Question = req.Question
		reembed = true
	}
	if req.Answer != "" {
		answer.Answer = req.Answer
	}
	if req.Topic != "" {
		answer.Topic = req.Topic
	}
	if req.EffectiveAt != nil {
		answer.EffectiveAt = *req.EffectiveAt
	}
	if req.Active != nil {
		answer.Active = *req.Active
	}
	answer.UpdatedAt = &now

	var values []float32
	if reembed {
		res, err := gs.embeddingProvider.Generate(answer.Question, embedding.TaskDocument)
		if err != nil {
			return nil, fmt.Errorf("failed to embed golden question: %w", err)
		}
		values = res.Embedding.Values
	}

	var citations []*entity.GoldenCitation
	replaceCitations := req.Citations != nil
	if replaceCitations {
		citations, err = gs.resolveCitations(ctx, uow, answer.Id, req.Citations, now)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.GoldenAnswerRepository().Update(ctx, answer); err != nil {
		return nil, err
	}
	if reembed {
		if err := uow.GoldenEmbeddingRepository().Upsert(ctx, answer.Id, values); err != nil {
			return nil, err
		}
	}
	if replaceCitations {
		if err := uow.GoldenCitationRepository().DeleteByAnswerId(ctx, answer.Id); err != nil {
			return nil, err
		}
		if len(citations) > 0 {
			if err := uow.GoldenCitationRepository().CreateBulk(ctx, citations); err != nil {
				return nil, err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if !replaceCitations {
		citations, _ = uow.GoldenCitationRepository().FindAllByAnswerId(ctx, answer.Id)
	}
	return gs.toResponse(answer, citations), nil
}

// Verify re-stamps the vetting date after a curator confirms the answer is
// still correct against current regulations.
func (gs *goldenService) Verify(ctx context.Context, req *dto.VerifyGoldenAnswerRequest) (*dto.GoldenAnswerResponse, error) {
	uow := gs.uowFactory.NewUnitOfWork(ctx)

	answer, err := gs.findAnswer(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	answer.EffectiveAt = now
	answer.UpdatedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.GoldenAnswerRepository().Update(ctx, answer); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[GOLDEN] verified answer %s effective_at=%s", answer.Id, now.Format(time.RFC3339))

	citations, _ := uow.GoldenCitationRepository().FindAllByAnswerId(ctx, answer.Id)
	return gs.toResponse(answer, citations), nil
}

func (gs *goldenService) Show(ctx context.Context, id uuid.UUID) (*dto.GoldenAnswerResponse, error) {
	uow := gs.uowFactory.NewUnitOfWork(ctx)

	answer, err := gs.findAnswer(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	citations, err := uow.GoldenCitationRepository().FindAllByAnswerId(ctx, id)
	if err != nil {
		return nil, err
	}
	return gs.toResponse(answer, citations), nil
}

func (gs *goldenService) List(ctx context.Context, topic string) ([]*dto.GoldenAnswerResponse, error) {
	uow := gs.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if topic != "" {
		specs = append(specs, specification.Filter("topic", topic))
	}

	answers, err := uow.GoldenAnswerRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GoldenAnswerResponse, 0, len(answers))
	for _, a := range answers {
		resp = append(resp, gs.toResponse(a, nil))
	}
	return resp, nil
}

func (gs *goldenService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := gs.uowFactory.NewUnitOfWork(ctx)

	if _, err := gs.findAnswer(ctx, uow, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.GoldenAnswerRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.GoldenEmbeddingRepository().DeleteByAnswerId(ctx, id); err != nil {
		return err
	}
	if err := uow.GoldenCitationRepository().DeleteByAnswerId(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

func (gs *goldenService) findAnswer(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.GoldenAnswer, error) {
	answer, err := uow.GoldenAnswerRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, fmt.Errorf("golden answer not found")
	}
	return answer, nil
}

// resolveCitations validates curator-supplied citations against the KB.
// Each citation must name a real document, explicitly or by source label;
// curation rejects dangling references instead of storing them.
func (gs *goldenService) resolveCitations(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	answerId uuid.UUID,
	inputs []dto.GoldenCitationInput,
	now time.Time,
) ([]*entity.GoldenCitation, error) {
	var citations []*entity.GoldenCitation
	for _, in := range inputs {
		docId := uuid.Nil
		if in.KBDocumentId != nil {
			docId = *in.KBDocumentId
		} else {
			doc, err := uow.KBDocumentRepository().FindOne(ctx, specification.BySource{Source: in.Label})
			if err != nil {
				return nil, fmt.Errorf("failed to resolve citation %q: %w", in.Label, err)
			}
			if doc == nil {
				return nil, fmt.Errorf("citation %q does not match any KB document", in.Label)
			}
			docId = doc.Id
		}
		citations = append(citations, &entity.GoldenCitation{
			Id:             uuid.New(),
			GoldenAnswerId: answerId,
			KBDocumentId:   docId,
			Label:          in.Label,
			CreatedAt:      now,
		})
	}
	return citations, nil
}

func (gs *goldenService) toResponse(answer *entity.GoldenAnswer, citations []*entity.GoldenCitation) *dto.GoldenAnswerResponse {
	out := &dto.GoldenAnswerResponse{
		Id:          answer.Id,
		Question:    answer.Question,
		Answer:      answer.Answer,
		Topic:       answer.Topic,
		EffectiveAt: answer.EffectiveAt,
		Active:      answer.Active,
		CreatedAt:   answer.CreatedAt,
		UpdatedAt:   answer.UpdatedAt,
	}
	for _, c := range citations {
		docId := c.KBDocumentId
		out.Citations = append(out.Citations, dto.GoldenCitationInput{
			KBDocumentId: &docId,
			Label:        c.Label,
		})
	}
	return out
}
