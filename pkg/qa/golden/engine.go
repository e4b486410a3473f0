package golden

import (
	"context"
	"log"
	"strings"
	"time"

	"regassist-be/internal/repository/contract"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/pkg/embedding"
	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
	"regassist-be/pkg/retrieval"
)

// Config encapsulates golden fast-path parameters
type Config struct {
	// ServeThreshold serves the match directly, skipping the KB check.
	ServeThreshold float64

	// ConsiderThreshold is the lowest similarity still worth a KB-delta
	// check before serving.
	ConsiderThreshold float64

	// MaxQuestionLen gates out long, narrative questions that curated
	// answers never cover.
	MaxQuestionLen int

	// KBDeltaTimeout bounds the freshness check; on expiry the answer is
	// served anyway with a diagnostic flag.
	KBDeltaTimeout time.Duration
	KBDeltaLimit   int
}

func DefaultConfig() Config {
	return Config{
		ServeThreshold:    0.95,
		ConsiderThreshold: 0.70,
		MaxQuestionLen:    500,
		KBDeltaTimeout:    300 * time.Millisecond,
		KBDeltaLimit:      5,
	}
}

// Engine is the curated fast path: an expert-approved answer served without
// touching the model. Every failure inside it downgrades to the LLM route;
// nothing here may fail the request.
type Engine struct {
	embeddingProvider embedding.EmbeddingProvider
	uow               unitofwork.UnitOfWork
	scorer            *retrieval.Scorer
	cfg               Config
	logger            *log.Logger
}

func NewEngine(embeddingProvider embedding.EmbeddingProvider, uow unitofwork.UnitOfWork, scorer *retrieval.Scorer, cfg Config, logger *log.Logger) *Engine {
	if cfg.ServeThreshold <= 0 {
		cfg.ServeThreshold = DefaultConfig().ServeThreshold
	}
	if cfg.ConsiderThreshold <= 0 {
		cfg.ConsiderThreshold = DefaultConfig().ConsiderThreshold
	}
	if cfg.KBDeltaTimeout <= 0 {
		cfg.KBDeltaTimeout = DefaultConfig().KBDeltaTimeout
	}
	if cfg.KBDeltaLimit <= 0 {
		cfg.KBDeltaLimit = DefaultConfig().KBDeltaLimit
	}
	return &Engine{
		embeddingProvider: embeddingProvider,
		uow:               uow,
		scorer:            scorer,
		cfg:               cfg,
		logger:            logger,
	}
}

// GateAdapter decides cheaply whether the curated path is worth attempting.
func (e *Engine) GateAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    "golden_gate",
		Mapping: flow.FieldMap{Home: flow.SectionGolden},
		Run:     e.gate,
	}
}

func (e *Engine) gate(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	if view.GetBool(flow.SectionGolden, "bypass_requested") {
		return gateSkip("bypass_requested")
	}
	question := lastUserQuestion(messages)
	if question == "" {
		return gateSkip("no_question")
	}
	if e.cfg.MaxQuestionLen > 0 && len(question) > e.cfg.MaxQuestionLen {
		return gateSkip("question_too_long")
	}

	count, err := e.uow.GoldenAnswerRepository().CountActive(ctx)
	if err != nil {
		e.logger.Printf("[WARN] golden gate count failed, skipping path: %v", err)
		return gateSkip("store_unavailable")
	}
	if count == 0 {
		return gateSkip("empty_store")
	}

	return flow.Patch{
		Fields:    map[string]any{"gate_passed": true},
		Decisions: map[string]any{"golden_gate": "passed"},
		Stage:     flow.StageRouting,
	}
}

func gateSkip(cause string) flow.Patch {
	return flow.Patch{
		Fields: map[string]any{
			"gate_passed": false,
			"gate_cause":  cause,
		},
		Decisions: map[string]any{"golden_gate": cause},
		Stage:     flow.StageRouting,
	}
}

// LookupAdapter matches the question against curated answers by embedding
// similarity and sorts the match into a confidence band.
func (e *Engine) LookupAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    "golden_lookup",
		Mapping: flow.FieldMap{Home: flow.SectionGolden},
		Run:     e.lookup,
	}
}

func (e *Engine) lookup(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	question := lastUserQuestion(messages)

	res, err := e.embeddingProvider.Generate(question, embedding.TaskQuery)
	if err != nil {
		e.logger.Printf("[WARN] golden lookup embedding failed: %v", err)
		return fallback("golden_lookup_failed")
	}

	matches, err := e.uow.GoldenEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, 3, e.cfg.ConsiderThreshold)
	if err != nil {
		e.logger.Printf("[WARN] golden similarity search failed: %v", err)
		return fallback("golden_lookup_failed")
	}
	if len(matches) == 0 {
		return fallback("no_golden_match")
	}

	best := e.pickBest(matches)
	e.logger.Printf("[GOLDEN] best match id=%s similarity=%.4f topic=%s", best.Answer.Id, best.Similarity, best.Answer.Topic)

	fields := map[string]any{
		"golden_match":        true,
		"confidence":          best.Similarity,
		"golden_answer_id":    best.Answer.Id.String(),
		"answer_text":         best.Answer.Answer,
		"answer_topic":        best.Answer.Topic,
		"answer_effective_at": best.Answer.EffectiveAt,
		"serve_direct":        best.Similarity >= e.cfg.ServeThreshold,
		"needs_kb_check":      best.Similarity < e.cfg.ServeThreshold,
	}

	// Citation hydration is best-effort; a curated answer without its
	// source labels still beats an LLM round trip.
	citations, err := e.uow.GoldenCitationRepository().FindAllByAnswerId(ctx, best.Answer.Id)
	if err != nil {
		e.logger.Printf("[WARN] citation hydration failed for %s: %v", best.Answer.Id, err)
	} else {
		labels := make([]string, 0, len(citations))
		for _, c := range citations {
			labels = append(labels, c.Label)
		}
		fields["citations"] = labels
	}

	return flow.Patch{
		Fields:    fields,
		Decisions: map[string]any{"golden_confidence": best.Similarity},
	}
}

// pickBest ranks the candidate set with the shared retrieval scorer, so that
// between near matches the more recently vetted answer wins. The confidence
// bands still read the winner's raw similarity; the blended score only orders
// candidates.
func (e *Engine) pickBest(matches []*contract.ScoredGoldenAnswer) *contract.ScoredGoldenAnswer {
	if e.scorer == nil || len(matches) == 1 {
		return matches[0]
	}

	byID := make(map[string]*contract.ScoredGoldenAnswer, len(matches))
	candidates := make([]retrieval.Candidate, 0, len(matches))
	for _, m := range matches {
		id := m.Answer.Id.String()
		byID[id] = m
		candidates = append(candidates, retrieval.Candidate{
			ID:         id,
			Title:      m.Answer.Question,
			Similarity: m.Similarity,
			UpdatedAt:  m.Answer.EffectiveAt,
		})
	}

	ranked := e.scorer.Rank(candidates, time.Now())
	if len(ranked) == 0 {
		// The store floor already filtered by similarity; an over-eager min
		// bar must not turn a real match into a miss.
		return matches[0]
	}
	return byID[ranked[0].ID]
}

func fallback(cause string) flow.Patch {
	return flow.Patch{
		Fields: map[string]any{
			"golden_match":    false,
			"fallback_to_llm": true,
			"fallback_cause":  cause,
		},
		Decisions: map[string]any{"golden_fallback": cause},
	}
}

// KBCheckAdapter verifies no regulation cited by the matched answer changed
// after it was last vetted.
func (e *Engine) KBCheckAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    "kb_context_check",
		Mapping: flow.FieldMap{Home: flow.SectionGolden},
		Run:     e.kbCheck,
	}
}

func (e *Engine) kbCheck(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	effectiveAt := effectiveAtFromView(view)
	topic := view.GetString(flow.SectionGolden, "answer_topic")

	cctx, cancel := context.WithTimeout(ctx, e.cfg.KBDeltaTimeout)
	defer cancel()

	changed, err := e.uow.KBDocumentRepository().FindChangedSince(cctx, effectiveAt, topic, e.cfg.KBDeltaLimit)
	if err != nil {
		// The freshness check is advisory. Serve anyway, flagged.
		e.logger.Printf("[WARN] kb delta check failed, serving without context: %v", err)
		return flow.Patch{
			Fields: map[string]any{
				"kb_checked":                false,
				"served_without_kb_context": true,
			},
			Decisions: map[string]any{"kb_delta": "unavailable"},
		}
	}

	if len(changed) == 0 {
		return flow.Patch{
			Fields:    map[string]any{"kb_checked": true, "kb_delta_found": false},
			Decisions: map[string]any{"kb_delta": "clean"},
		}
	}

	sources := make([]string, 0, len(changed))
	for _, doc := range changed {
		sources = append(sources, doc.Source)
	}
	e.logger.Printf("[GOLDEN] kb delta found: %d document(s) changed since vetting (%s)", len(changed), strings.Join(sources, ", "))
	return flow.Patch{
		Fields: map[string]any{
			"kb_checked":       true,
			"kb_delta_found":   true,
			"kb_delta_sources": sources,
		},
		Decisions: map[string]any{"kb_delta": "found"},
	}
}

// ServeAdapter emits the curated answer as the response.
func (e *Engine) ServeAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name: "golden_serve",
		Mapping: flow.FieldMap{
			Home:    flow.SectionGolden,
			Mirrors: []string{"response_text", "citations"},
		},
		Run: e.serve,
	}
}

func (e *Engine) serve(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	text := view.GetString(flow.SectionGolden, "answer_text")
	if text == "" {
		// Lookup never flagged a match; routing should not have come here.
		return fallback("empty_answer_text")
	}

	if view.GetBool(flow.SectionGolden, "kb_delta_found") {
		text = text + "\n\n" + recencyNotice(view)
	}

	return flow.Patch{
		Fields: map[string]any{
			"golden_served": true,
			"response_text": text,
		},
		Decisions: map[string]any{"answer_path": "golden"},
		Stage:     flow.StageAnswering,
	}
}

func recencyNotice(view flow.View) string {
	notice := "Note: regulations related to this answer have changed since it was last reviewed"
	if raw, ok := view.Get(flow.SectionGolden, "kb_delta_sources"); ok {
		if sources, ok := raw.([]string); ok && len(sources) > 0 {
			notice += " (" + strings.Join(sources, ", ") + ")"
		}
	}
	return notice + ". Please verify against the latest text."
}

func effectiveAtFromView(view flow.View) time.Time {
	if raw, ok := view.Get(flow.SectionGolden, "answer_effective_at"); ok {
		if t, ok := raw.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

func lastUserQuestion(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}
