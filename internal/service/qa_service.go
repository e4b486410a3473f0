package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"regassist-be/internal/constant"
	"regassist-be/internal/dto"
	"regassist-be/internal/entity"
	"regassist-be/internal/repository/memory"
	"regassist-be/internal/repository/specification"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/pkg/embedding"
	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
	"regassist-be/pkg/qa/feedback"
	"regassist-be/pkg/qa/golden"
	"regassist-be/pkg/qa/invoke"
	"regassist-be/pkg/qa/prompt"
	"regassist-be/pkg/qa/respcache"
	"regassist-be/pkg/qa/stream"
	"regassist-be/pkg/qa/tools"
	"regassist-be/pkg/retrieval"
	"regassist-be/pkg/store"

	"github.com/google/uuid"
)

// IQAService defines the question-answering service interface
type IQAService interface {
	CreateSession(ctx context.Context, clientKey string, req *dto.CreateQASessionRequest) (*dto.CreateQASessionResponse, error)
	GetAllSessions(ctx context.Context, clientKey string) ([]*dto.GetQASessionsResponse, error)
	GetHistory(ctx context.Context, clientKey string, sessionId uuid.UUID) ([]*dto.GetQAHistoryResponse, error)
	DeleteSession(ctx context.Context, clientKey string, req *dto.DeleteQASessionRequest) error
	Ask(ctx context.Context, clientKey string, req *dto.AskRequest) (*dto.AskResponse, error)
	AskStream(ctx context.Context, clientKey string, req *dto.AskRequest, writer stream.FrameWriter) (*dto.AskResponse, error)
}

// Pipeline step names. Engine adapters carry their own names; these constants
// exist so the routing table and the registrations cannot drift apart.
const (
	stepGoldenGate     = "golden_gate"
	stepGoldenLookup   = "golden_lookup"
	stepKBContextCheck = "kb_context_check"
	stepGoldenServe    = "golden_serve"
	stepCacheCheck     = "cache_check"
	stepCacheWrite     = "cache_write"
	stepProviderSelect = "provider_select"
	stepLLMInvoke      = "llm_invoke"
	stepToolExecute    = "tool_execute"
	stepStreamSetup    = "stream_setup"
	stepStreamWrite    = "stream_write"
	stepDeliver        = "deliver"
	stepFeedbackUI     = "feedback_show_ui"
	stepComplete       = "complete"
)

// QAEngineConfig groups the per-engine knobs the container resolves from env.
type QAEngineConfig struct {
	Golden    golden.Config
	Cache     respcache.Config
	Invoke    invoke.Config
	Tools     tools.Config
	Stream    stream.Config
	Feedback  feedback.Config
	Retrieval retrieval.Config

	// HistoryLimit caps how many stored messages are replayed as LLM context.
	HistoryLimit int
}

func DefaultQAEngineConfig() QAEngineConfig {
	return QAEngineConfig{
		Golden:       golden.DefaultConfig(),
		Cache:        respcache.DefaultConfig(),
		Invoke:       invoke.DefaultConfig(),
		Tools:        tools.DefaultConfig(),
		Stream:       stream.DefaultConfig(),
		Feedback:     feedback.DefaultConfig(),
		Retrieval:    retrieval.DefaultConfig(),
		HistoryLimit: 12,
	}
}

// qaService coordinates the answering engines behind one runner
type qaService struct {
	uowFactory       unitofwork.RepositoryFactory
	sessionRepo      *memory.SessionRepository
	publisherService IPublisherService
	pipelineLogger   *log.Logger

	// Answering engines, each owning its slice of request state
	goldenEngine   *golden.Engine
	cacheEngine    *respcache.Engine
	invokeEngine   *invoke.Engine
	toolsEngine    *tools.Engine
	streamEngine   *stream.Engine
	feedbackEngine *feedback.Engine

	promptBuilder *prompt.Builder
	runner        *flow.Runner
	historyLimit  int
}

// NewQAService creates the QA service with all answering engines wired into
// a single pipeline runner.
func NewQAService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	providers map[string]llm.LLMProvider,
	cacheClient respcache.Client,
	sessionRepo *memory.SessionRepository,
	publisherService IPublisherService,
	cfg QAEngineConfig,
) IQAService {

	pipelineLogger := initPipelineLogger()

	// Engines query through a plain unit of work; transactional writes stay
	// in the service methods.
	readUow := uowFactory.NewUnitOfWork(context.Background())

	// The golden store ranks candidates with the shared scorer weights but no
	// min bar: the similarity floor in the store query is the only filter.
	goldenScorer := retrieval.NewScorer(retrieval.Config{
		Weights:  cfg.Retrieval.Weights,
		HalfLife: cfg.Retrieval.HalfLife,
		TopK:     3,
	}, pipelineLogger)
	goldenEngine := golden.NewEngine(embeddingProvider, readUow, goldenScorer, cfg.Golden, pipelineLogger)
	cacheEngine := respcache.NewEngine(cacheClient, cfg.Cache, pipelineLogger)

	invokeEngine := invoke.NewEngine(cfg.Invoke, pipelineLogger)
	for name, provider := range providers {
		invokeEngine.RegisterProvider(name, provider)
	}

	searcher := retrieval.NewSearcher(embeddingProvider, cfg.Retrieval, pipelineLogger)
	toolsEngine := tools.NewEngine(cfg.Tools, pipelineLogger)
	toolsEngine.Register(tools.NewKBSearchHandler(searcher, readUow))
	toolsEngine.Register(tools.NewAgreementLookupHandler(readUow))
	toolsEngine.Register(tools.NewDocumentFetchHandler(readUow))
	toolsEngine.Register(tools.NewFAQSearchHandler(embeddingProvider, readUow))
	invokeEngine.OfferTools(toolsEngine.Definitions())

	qs := &qaService{
		uowFactory:       uowFactory,
		sessionRepo:      sessionRepo,
		publisherService: publisherService,
		pipelineLogger:   pipelineLogger,
		goldenEngine:     goldenEngine,
		cacheEngine:      cacheEngine,
		invokeEngine:     invokeEngine,
		toolsEngine:      toolsEngine,
		streamEngine:     stream.NewEngine(cfg.Stream, pipelineLogger),
		feedbackEngine:   feedback.NewEngine(cfg.Feedback, pipelineLogger),
		promptBuilder:    prompt.NewBuilder(),
		historyLimit:     cfg.HistoryLimit,
	}
	qs.runner = qs.buildRunner()

	return qs
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "qa_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[QA-PIPELINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// buildRunner registers every step once. The runner is shared across
// requests; all per-request data travels inside the state.
func (qs *qaService) buildRunner() *flow.Runner {
	runner := flow.NewRunner(stepGoldenGate, qs.route, qs.pipelineLogger)

	runner.Register(qs.goldenEngine.GateAdapter())
	runner.Register(qs.goldenEngine.LookupAdapter())
	runner.Register(qs.goldenEngine.KBCheckAdapter())
	runner.Register(qs.goldenEngine.ServeAdapter())
	runner.Register(qs.cacheEngine.CheckAdapter())
	runner.Register(qs.cacheEngine.WriteAdapter())
	runner.Register(qs.invokeEngine.SelectAdapter())
	runner.Register(qs.invokeEngine.InvokeAdapter())
	runner.Register(qs.toolsEngine.ExecuteAdapter())
	runner.Register(qs.streamEngine.SetupAdapter())
	runner.Register(qs.streamEngine.WriteAdapter())
	runner.Register(qs.feedbackEngine.ShowUIAdapter())
	runner.Register(qs.deliverAdapter())
	runner.Register(qs.completeAdapter())

	return runner
}

// route is the full routing table. Every branch reads fields written by the
// step that just ran; the state never routes on stale information because
// steps overwrite their own outcome keys on each pass.
func (qs *qaService) route(current string, view flow.View) string {
	switch current {
	case stepGoldenGate:
		if view.GetBool(flow.SectionGolden, "gate_passed") {
			return stepGoldenLookup
		}
		return stepCacheCheck

	case stepGoldenLookup:
		switch {
		case view.GetBool(flow.SectionGolden, "serve_direct"):
			return stepGoldenServe
		case view.GetBool(flow.SectionGolden, "needs_kb_check"):
			return stepKBContextCheck
		default:
			return stepCacheCheck
		}

	case stepKBContextCheck:
		// Delta found, clean, or unavailable: the golden answer is served
		// either way, annotated by what the check learned.
		return stepGoldenServe

	case stepGoldenServe:
		if view.GetBool(flow.SectionGolden, "golden_served") {
			return stepStreamSetup
		}
		return stepCacheCheck

	case stepCacheCheck:
		if view.GetBool(flow.SectionCache, "cache_hit") {
			return stepStreamSetup
		}
		return stepProviderSelect

	case stepProviderSelect:
		// Selection writes the provider name; its absence means no endpoint
		// could be resolved and the request degrades at delivery.
		if view.GetString(flow.SectionLLM, "provider") == "" {
			return stepDeliver
		}
		return stepLLMInvoke

	case stepLLMInvoke:
		switch {
		case view.GetBool(flow.SectionLLM, "needs_tools"):
			return stepToolExecute
		case view.GetBool(flow.SectionLLM, "llm_success"):
			return stepCacheWrite
		case qs.invokeEngine.ShouldRetry(view):
			return stepProviderSelect
		default:
			return stepDeliver
		}

	case stepToolExecute:
		return stepLLMInvoke

	case stepCacheWrite:
		return stepStreamSetup

	case stepStreamSetup:
		if view.GetBool(flow.SectionStreaming, "streaming_active") {
			return stepStreamWrite
		}
		return stepDeliver

	case stepStreamWrite:
		return stepDeliver

	case stepDeliver:
		return stepFeedbackUI

	case stepFeedbackUI:
		return stepComplete
	}

	return ""
}

// receiveAdapter seeds per-request metadata before routing begins. It is
// built per request because the shared runner steps must stay stateless.
func receiveAdapter(streamRequested, anonymous, skipCurated bool, responseId uuid.UUID) *flow.Adapter {
	return &flow.Adapter{
		Name:    "receive",
		Mapping: flow.FieldMap{Home: flow.SectionFeedback},
		Run: func(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
			extra := map[flow.Section]map[string]any{
				flow.SectionStreaming: {"stream_requested": streamRequested},
			}
			if skipCurated {
				extra[flow.SectionGolden] = map[string]any{"bypass_requested": true}
			}
			return flow.Patch{
				Fields: map[string]any{
					"anonymous":             anonymous,
					"response_id_candidate": responseId.String(),
				},
				Extra: extra,
				Stage: flow.StageReceived,
			}
		},
	}
}

// deliverAdapter consolidates the outcome: promotes the response id when an
// answer exists, stamps the delivery mode, and terminates failed requests.
func (qs *qaService) deliverAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name: stepDeliver,
		Mapping: flow.FieldMap{
			Home:    flow.SectionFeedback,
			Mirrors: []string{"response_id"},
		},
		Run: qs.deliver,
	}
}

func (qs *qaService) deliver(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	raw, _ := view.Flat("response_text")
	text, _ := raw.(string)

	if text == "" {
		cause := view.GetString(flow.SectionLLM, "error_message")
		if cause == "" {
			cause = "no answer produced"
		}
		qs.pipelineLogger.Printf("[DELIVER] failed request_id=%s cause=%s", view.RequestID(), cause)
		return flow.Patch{
			Extra: map[flow.Section]map[string]any{
				flow.SectionStreaming: {"response_complete": false},
			},
			Decisions: map[string]any{
				"answer_path":  "none",
				"delivery":     "failed",
				"failed_cause": cause,
			},
			Stage:    flow.StageDelivery,
			Complete: flow.Done(),
		}
	}

	mode := "single_pass"
	if view.GetBool(flow.SectionStreaming, "stream_complete") {
		mode = "stream"
	} else if view.GetBool(flow.SectionStreaming, "disconnect") {
		// Answer was produced and committed; only the wire went away.
		mode = "stream_interrupted"
	}

	return flow.Patch{
		Fields: map[string]any{
			"response_id": view.GetString(flow.SectionFeedback, "response_id_candidate"),
		},
		Extra: map[flow.Section]map[string]any{
			flow.SectionStreaming: {"response_complete": true, "delivery_mode": mode},
		},
		Decisions: map[string]any{
			"answer_path": answerPath(view),
			"delivery":    mode,
		},
		Stage: flow.StageDelivery,
	}
}

// answerPath names how the answer was produced, in fast-path priority order.
func answerPath(view flow.View) string {
	switch {
	case view.GetBool(flow.SectionGolden, "golden_served"):
		return "golden"
	case view.GetBool(flow.SectionCache, "cache_hit"):
		return "cache"
	case view.GetInt(flow.SectionTools, "tool_rounds") > 0:
		return "llm_tools"
	default:
		return "llm"
	}
}

func (qs *qaService) completeAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    stepComplete,
		Mapping: flow.FieldMap{Home: flow.SectionFeedback},
		Run: func(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
			return flow.Patch{Stage: flow.StageDone, Complete: flow.Done()}
		},
	}
}

// CreateSession creates a new QA session seeded with a welcome message
func (qs *qaService) CreateSession(ctx context.Context, clientKey string, req *dto.CreateQASessionRequest) (*dto.CreateQASessionResponse, error) {
	uow := qs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	session := entity.QASession{
		Id:        uuid.New(),
		ClientKey: clientKey,
		Title:     "Unnamed session",
		Anonymous: req.Anonymous,
		CreatedAt: now,
	}

	welcome := entity.QAMessage{
		Id:          uuid.New(),
		QASessionId: session.Id,
		Role:        constant.QAMessageRoleAssistant,
		Content:     constant.QAWelcomeMessage,
		CreatedAt:   now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.QASessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	if err := uow.QAMessageRepository().Create(ctx, &welcome); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	qs.sessionRepo.Save(&store.Session{
		ID:        session.Id.String(),
		ClientKey: session.ClientKey,
		Anonymous: session.Anonymous,
		Title:     session.Title,
	})

	return &dto.CreateQASessionResponse{Id: session.Id}, nil
}

// GetAllSessions retrieves all sessions owned by the client key
func (qs *qaService) GetAllSessions(ctx context.Context, clientKey string) ([]*dto.GetQASessionsResponse, error) {
	uow := qs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.QASessionRepository().FindAll(ctx,
		specification.ByClientKey{ClientKey: clientKey},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetQASessionsResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, &dto.GetQASessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

// GetHistory retrieves the message history for a session
func (qs *qaService) GetHistory(ctx context.Context, clientKey string, sessionId uuid.UUID) ([]*dto.GetQAHistoryResponse, error) {
	uow := qs.uowFactory.NewUnitOfWork(ctx)

	if _, err := qs.resolveSession(ctx, uow, clientKey, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.QAMessageRepository().FindAll(ctx,
		specification.ByQASessionID{QASessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, len(messages))
	for i, msg := range messages {
		messageIds[i] = msg.Id
	}

	citations, err := uow.QAMessageRepository().FindCitationsByMessageIds(ctx, messageIds)
	if err != nil {
		return nil, err
	}

	citationsByMsgId := make(map[uuid.UUID][]dto.QACitationDTO)
	for _, c := range citations {
		citationsByMsgId[c.QAMessageId] = append(citationsByMsgId[c.QAMessageId], dto.QACitationDTO{
			KBDocumentId: c.KBDocumentId,
			Label:        c.Label,
		})
	}

	resp := make([]*dto.GetQAHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, &dto.GetQAHistoryResponse{
			Id:         msg.Id,
			Role:       msg.Role,
			Content:    msg.Content,
			AnswerPath: msg.AnswerPath,
			CreatedAt:  msg.CreatedAt,
			Citations:  citationsByMsgId[msg.Id],
		})
	}

	return resp, nil
}

// Ask answers one question in a single pass.
func (qs *qaService) Ask(ctx context.Context, clientKey string, req *dto.AskRequest) (*dto.AskResponse, error) {
	return qs.ask(ctx, clientKey, req, nil)
}

// AskStream answers one question delivering SSE frames through writer. The
// writer is registered under the request id before routing starts so the
// stream setup step can find it.
func (qs *qaService) AskStream(ctx context.Context, clientKey string, req *dto.AskRequest, writer stream.FrameWriter) (*dto.AskResponse, error) {
	req.Stream = true
	return qs.ask(ctx, clientKey, req, writer)
}

func (qs *qaService) ask(ctx context.Context, clientKey string, req *dto.AskRequest, writer stream.FrameWriter) (*dto.AskResponse, error) {
	uow := qs.uowFactory.NewUnitOfWork(ctx)

	snap, err := qs.resolveSession(ctx, uow, clientKey, req.QASessionId)
	if err != nil {
		return nil, err
	}

	history, err := qs.loadHistory(ctx, uow, req.QASessionId)
	if err != nil {
		// Degraded context beats a failed request.
		qs.pipelineLogger.Printf("[WARN] Failed to load history for session %s: %v", req.QASessionId, err)
		history = nil
	}

	requestId := uuid.New().String()
	responseId := uuid.New()

	if writer != nil {
		qs.streamEngine.RegisterWriter(requestId, writer)
		defer qs.streamEngine.ReleaseWriter(requestId)
	}

	st := flow.NewState(requestId, req.QASessionId.String())
	messages := qs.promptBuilder.Build(req.Question, history)

	seed := receiveAdapter(req.Stream, snap.Anonymous, req.SkipCurated, responseId)
	seed.Execute(ctx, st, messages, qs.pipelineLogger)

	if err := qs.runner.Execute(ctx, st, messages); err != nil {
		return nil, fmt.Errorf("qa pipeline: %w", err)
	}

	resp := qs.buildResponse(req.QASessionId, requestId, responseId, st)

	if !resp.Failed {
		if err := qs.persistTurn(ctx, uow, snap, req, responseId, requestId, resp); err != nil {
			return nil, err
		}
	}

	qs.publishUsage(ctx, req.QASessionId, st)

	return resp, nil
}

// DeleteSession removes a session and its messages
func (qs *qaService) DeleteSession(ctx context.Context, clientKey string, req *dto.DeleteQASessionRequest) error {
	uow := qs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.QASessionRepository().FindOne(ctx,
		specification.ByID{ID: req.QASessionId},
		specification.ByClientKey{ClientKey: clientKey},
	)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session not found or access denied")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.QASessionRepository().Delete(ctx, req.QASessionId); err != nil {
		return err
	}
	if err := uow.QAMessageRepository().DeleteByQASessionId(ctx, req.QASessionId); err != nil {
		return err
	}

	qs.sessionRepo.Delete(req.QASessionId.String())

	return uow.Commit()
}

// resolveSession returns the session snapshot, hitting the database only
// when the memory store has nothing for it.
func (qs *qaService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, clientKey string, sessionId uuid.UUID) (*store.Session, error) {
	if snap, found := qs.sessionRepo.Get(sessionId.String()); found {
		if snap.ClientKey != clientKey {
			return nil, fmt.Errorf("session not found or access denied")
		}
		return snap, nil
	}

	sess, err := uow.QASessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByClientKey{ClientKey: clientKey},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load qa session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}

	snap := &store.Session{
		ID:        sess.Id.String(),
		ClientKey: sess.ClientKey,
		Anonymous: sess.Anonymous,
		Title:     sess.Title,
	}
	qs.sessionRepo.Save(snap)
	return snap, nil
}

// loadHistory replays the most recent stored turns, oldest first.
func (qs *qaService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.QAMessageRepository().FindAll(ctx,
		specification.ByQASessionID{QASessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: qs.historyLimit, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != constant.QAMessageRoleUser && msg.Role != constant.QAMessageRoleAssistant {
			continue
		}
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	return history, nil
}

func (qs *qaService) buildResponse(sessionId uuid.UUID, requestId string, responseId uuid.UUID, st *flow.State) *dto.AskResponse {
	raw, _ := st.Flat("response_text")
	answer, _ := raw.(string)

	resp := &dto.AskResponse{
		QASessionId: sessionId,
		RequestId:   requestId,
		Answer:      answer,
		Streamed:    st.GetBool(flow.SectionStreaming, "stream_complete"),
		FeedbackUI:  st.GetString(flow.SectionFeedback, "feedback_ui"),
	}
	if path, ok := st.Decision("answer_path"); ok {
		resp.AnswerPath, _ = path.(string)
	}

	if answer == "" {
		resp.Failed = true
		if cause, ok := st.Decision("failed_cause"); ok {
			resp.FailedCause, _ = cause.(string)
		}
		return resp
	}

	resp.ResponseId = &responseId
	resp.Citations = collectCitations(st)
	return resp
}

// collectCitations gathers source labels the answer leaned on: curated
// golden citations plus any newer KB documents the delta check surfaced.
func collectCitations(st *flow.State) []dto.QACitationDTO {
	var out []dto.QACitationDTO
	if raw, ok := st.Get(flow.SectionGolden, "citations"); ok {
		if labels, ok := raw.([]string); ok {
			for _, label := range labels {
				out = append(out, dto.QACitationDTO{Label: label})
			}
		}
	}
	if raw, ok := st.Get(flow.SectionGolden, "kb_delta_sources"); ok {
		if labels, ok := raw.([]string); ok {
			for _, label := range labels {
				out = append(out, dto.QACitationDTO{Label: label})
			}
		}
	}
	return out
}

// persistTurn writes the question and answer in one transaction, resolves
// citation labels to KB documents, and refreshes the session snapshot.
func (qs *qaService) persistTurn(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	snap *store.Session,
	req *dto.AskRequest,
	responseId uuid.UUID,
	requestId string,
	resp *dto.AskResponse,
) error {
	updateTitle := snap.TurnCount == 0
	now := time.Now()

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	userMessage := entity.QAMessage{
		Id:          uuid.New(),
		QASessionId: req.QASessionId,
		Role:        constant.QAMessageRoleUser,
		Content:     req.Question,
		CreatedAt:   now,
	}
	if err := uow.QAMessageRepository().Create(ctx, &userMessage); err != nil {
		return err
	}

	answerMessage := entity.QAMessage{
		Id:          responseId,
		QASessionId: req.QASessionId,
		Role:        constant.QAMessageRoleAssistant,
		Content:     resp.Answer,
		RequestId:   requestId,
		AnswerPath:  resp.AnswerPath,
		CreatedAt:   now.Add(1 * time.Millisecond),
	}
	if err := uow.QAMessageRepository().Create(ctx, &answerMessage); err != nil {
		return err
	}

	if rows := qs.resolveCitationRows(ctx, uow, responseId, resp.Citations, now); len(rows) > 0 {
		if err := uow.QAMessageRepository().CreateCitations(ctx, rows); err != nil {
			return err
		}
	}

	title := snap.Title
	if updateTitle {
		title = titleFromQuestion(req.Question)
		sess, err := uow.QASessionRepository().FindOne(ctx, specification.ByID{ID: req.QASessionId})
		if err == nil && sess != nil {
			sess.Title = title
			sess.UpdatedAt = &now
			if err := uow.QASessionRepository().Update(ctx, sess); err != nil {
				qs.pipelineLogger.Printf("[WARN] Failed to update session title: %v", err)
				title = snap.Title
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	snap.Title = title
	snap.TurnCount++
	snap.LastRequestID = requestId
	snap.LastAnswerPath = resp.AnswerPath
	snap.LastActiveAt = now
	qs.sessionRepo.Save(snap)

	return nil
}

// resolveCitationRows maps citation labels to KB document rows. Labels with
// no matching document stay response-only; the row requires a document id.
func (qs *qaService) resolveCitationRows(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	messageId uuid.UUID,
	citations []dto.QACitationDTO,
	now time.Time,
) []*entity.QACitation {
	var rows []*entity.QACitation
	for _, c := range citations {
		doc, err := uow.KBDocumentRepository().FindOne(ctx, specification.BySource{Source: c.Label})
		if err != nil || doc == nil {
			continue
		}
		rows = append(rows, &entity.QACitation{
			Id:           uuid.New(),
			QAMessageId:  messageId,
			KBDocumentId: doc.Id,
			Label:        c.Label,
			CreatedAt:    now,
		})
	}
	return rows
}

// publishUsage emits the per-request audit payload on the usage bus. The
// consumer service turns it into a usage_records row; delivery never blocks
// on that write.
func (qs *qaService) publishUsage(ctx context.Context, sessionId uuid.UUID, st *flow.State) {
	if qs.publisherService == nil {
		return
	}

	model := st.GetString(flow.SectionLLM, "model_used")
	if model == "" {
		model = st.GetString(flow.SectionLLM, "model")
	}

	sid := sessionId
	payload := dto.PublishUsageMessage{
		RequestId:   st.RequestID(),
		QASessionId: &sid,
		Stage:       st.Stage(),
		Flags: dto.UsageFlags{
			GoldenServed: st.GetBool(flow.SectionGolden, "golden_served"),
			CacheHit:     st.GetBool(flow.SectionCache, "cache_hit"),
			Streamed:     st.GetBool(flow.SectionStreaming, "stream_complete"),
		},
		Provider: st.GetString(flow.SectionLLM, "provider"),
		Model:    model,
		Tokens: dto.UsageTokens{
			Prompt:     st.GetInt(flow.SectionLLM, "prompt_tokens"),
			Completion: st.GetInt(flow.SectionLLM, "completion_tokens"),
		},
		ToolRounds:  st.GetInt(flow.SectionTools, "tool_rounds"),
		DurationMs:  time.Since(st.StartedAt()).Milliseconds(),
		Decisions:   st.Decisions(),
		Metrics:     st.Metrics(),
		NodeHistory: st.History(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		qs.pipelineLogger.Printf("[WARN] usage payload marshal failed request_id=%s: %v", st.RequestID(), err)
		return
	}
	if err := qs.publisherService.Publish(ctx, body); err != nil {
		qs.pipelineLogger.Printf("[WARN] usage publish failed request_id=%s: %v", st.RequestID(), err)
	}
}

// titleFromQuestion derives a session title from the first question.
func titleFromQuestion(question string) string {
	title := strings.Join(strings.Fields(question), " ")
	if runes := []rune(title); len(runes) > constant.QASessionTitleMaxLen {
		title = string(runes[:constant.QASessionTitleMaxLen]) + "..."
	}
	if title == "" {
		title = "Unnamed session"
	}
	return title
}
