package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"regassist-be/internal/dto"
	"regassist-be/internal/entity"
	"regassist-be/internal/repository/memory"
	"regassist-be/internal/repository/specification"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/pkg/events"
	pktNats "regassist-be/pkg/nats"
	"regassist-be/pkg/qa/feedback"

	"github.com/google/uuid"
)

const (
	FeedbackStatusAccepted = "accepted"
	FeedbackStatusRejected = "rejected"
)

type IFeedbackService interface {
	Submit(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error)
	GetOptions(ctx context.Context, responseId string, anonymous bool) (*dto.FeedbackOptionsResponse, error)
	ListByResponse(ctx context.Context, responseId string) ([]*dto.ListFeedbackResponse, error)
}

type feedbackService struct {
	uowFactory     unitofwork.RepositoryFactory
	feedbackEngine *feedback.Engine
	trustCache     *memory.TrustCache
	eventPublisher *pktNats.Publisher
}

func NewFeedbackService(
	uowFactory unitofwork.RepositoryFactory,
	feedbackEngine *feedback.Engine,
	trustCache *memory.TrustCache,
	eventPublisher *pktNats.Publisher,
) IFeedbackService {
	return &feedbackService{
		uowFactory:     uowFactory,
		feedbackEngine: feedbackEngine,
		trustCache:     trustCache,
		eventPublisher: eventPublisher,
	}
}

// Submit routes one feedback submission and persists its outcome. Expert
// submissions pass the trust gate first; a rejection is terminal and keeps
// only the reason and score.
func (fs *feedbackService) Submit(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error) {
	uow := fs.uowFactory.NewUnitOfWork(ctx)

	answer, err := fs.findAnswer(ctx, uow, req.ResponseId)
	if err != nil {
		return nil, err
	}

	route := fs.feedbackEngine.ResolveRoute(feedback.Submission{
		ResponseID: req.ResponseId,
		Route:      req.Route,
		ExpertID:   req.ExpertId,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Anonymous:  req.Anonymous,
		Context:    map[string]any{"answer_path": answer.AnswerPath},
	})

	if route == feedback.RouteExpert {
		if req.ExpertId == nil {
			return nil, fmt.Errorf("expert route requires an expert identity")
		}
		score, err := fs.trustScore(ctx, uow, *req.ExpertId)
		if err != nil {
			return nil, err
		}

		gate := fs.feedbackEngine.TrustGate(score)
		if !gate.Accepted {
			return fs.reject(ctx, uow, req, answer, gate)
		}

		return fs.accept(ctx, uow, req, answer, route, &gate.Score)
	}

	return fs.accept(ctx, uow, req, answer, route, nil)
}

// GetOptions reports which feedback form a delivered answer should render.
// A missing answer disables the form rather than erroring: the client may
// ask about a response that failed before delivery.
func (fs *feedbackService) GetOptions(ctx context.Context, responseId string, anonymous bool) (*dto.FeedbackOptionsResponse, error) {
	uow := fs.uowFactory.NewUnitOfWork(ctx)

	_, err := fs.findAnswer(ctx, uow, responseId)
	mode, cause := fs.feedbackEngine.UIFor(err == nil, anonymous)

	return &dto.FeedbackOptionsResponse{
		ResponseId: responseId,
		UIMode:     string(mode),
		Cause:      cause,
	}, nil
}

func (fs *feedbackService) ListByResponse(ctx context.Context, responseId string) ([]*dto.ListFeedbackResponse, error) {
	uow := fs.uowFactory.NewUnitOfWork(ctx)

	records, err := uow.FeedbackRecordRepository().FindAllByResponseId(ctx, responseId)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.ListFeedbackResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, &dto.ListFeedbackResponse{
			Id:         r.Id,
			ResponseId: r.ResponseId,
			Route:      r.Route,
			Status:     r.Status,
			Rating:     r.Rating,
			Comment:    r.Comment,
			ExpertId:   r.ExpertId,
			TrustScore: r.TrustScore,
			Anonymous:  r.Anonymous,
			CreatedAt:  r.CreatedAt,
		})
	}
	return resp, nil
}

// findAnswer resolves a response id to the assistant message it names.
func (fs *feedbackService) findAnswer(ctx context.Context, uow unitofwork.UnitOfWork, responseId string) (*entity.QAMessage, error) {
	id, err := uuid.Parse(responseId)
	if err != nil {
		return nil, fmt.Errorf("invalid response id")
	}
	answer, err := uow.QAMessageRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	if answer == nil {
		return nil, fmt.Errorf("response not found")
	}
	return answer, nil
}

// trustScore reads the expert's score through the cache.
func (fs *feedbackService) trustScore(ctx context.Context, uow unitofwork.UnitOfWork, expertId uuid.UUID) (float64, error) {
	if score, found := fs.trustCache.Get(expertId); found {
		return score, nil
	}

	profile, err := uow.ExpertProfileRepository().FindOne(ctx, specification.ByID{ID: expertId})
	if err != nil {
		return 0, fmt.Errorf("failed to load expert profile: %w", err)
	}
	if profile == nil || !profile.Active {
		return 0, fmt.Errorf("expert profile not found")
	}

	fs.trustCache.Save(expertId, profile.TrustScore)
	return profile.TrustScore, nil
}

func (fs *feedbackService) accept(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	req *dto.SubmitFeedbackRequest,
	answer *entity.QAMessage,
	route string,
	trustScore *float64,
) (*dto.SubmitFeedbackResponse, error) {
	sessionId := answer.QASessionId
	record := entity.FeedbackRecord{
		Id:          uuid.New(),
		ResponseId:  req.ResponseId,
		QASessionId: &sessionId,
		Route:       route,
		Status:      FeedbackStatusAccepted,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Payload: map[string]any{
			"answer_path": answer.AnswerPath,
			"request_id":  answer.RequestId,
		},
		ExpertId:   req.ExpertId,
		TrustScore: trustScore,
		Anonymous:  req.Anonymous,
		CreatedAt:  time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.FeedbackRecordRepository().Create(ctx, &record); err != nil {
		return nil, err
	}
	if route == feedback.RouteExpert && req.ExpertId != nil {
		if err := uow.ExpertProfileRepository().IncrementReviewCount(ctx, *req.ExpertId); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	fs.publishEvent(ctx, "FEEDBACK_CREATED", map[string]interface{}{
		"record_id":   record.Id,
		"response_id": record.ResponseId,
		"route":       record.Route,
		"rating":      record.Rating,
		"comment":     record.Comment,
		"answer_path": answer.AnswerPath,
		"expert_id":   req.ExpertId,
	})

	return &dto.SubmitFeedbackResponse{
		Accepted: true,
		RecordId: &record.Id,
		Route:    route,
	}, nil
}

// reject persists the audit row for a trust-gate rejection. The submitted
// rating and comment are discarded; only the reason and score survive.
func (fs *feedbackService) reject(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	req *dto.SubmitFeedbackRequest,
	answer *entity.QAMessage,
	gate feedback.GateResult,
) (*dto.SubmitFeedbackResponse, error) {
	sessionId := answer.QASessionId
	score := gate.Score
	record := entity.FeedbackRecord{
		Id:          uuid.New(),
		ResponseId:  req.ResponseId,
		QASessionId: &sessionId,
		Route:       feedback.RouteExpert,
		Status:      FeedbackStatusRejected,
		Payload: map[string]any{
			"reason": gate.Reason,
		},
		ExpertId:   req.ExpertId,
		TrustScore: &score,
		Anonymous:  req.Anonymous,
		CreatedAt:  time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.FeedbackRecordRepository().Create(ctx, &record); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	fs.publishEvent(ctx, "FEEDBACK_REJECTED", map[string]interface{}{
		"response_id": req.ResponseId,
		"expert_id":   req.ExpertId,
		"reason":      gate.Reason,
		"trust_score": gate.Score,
	})

	return &dto.SubmitFeedbackResponse{
		Accepted:   false,
		Route:      feedback.RouteExpert,
		Reason:     gate.Reason,
		TrustScore: &score,
	}, nil
}

func (fs *feedbackService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if fs.eventPublisher == nil {
		return
	}
	event := events.Now(eventType, data)
	// Notification delivery is auxiliary; the submission already committed.
	if err := fs.eventPublisher.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", eventType, err)
	}
}
