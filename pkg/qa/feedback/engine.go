package feedback

import (
	"context"
	"fmt"
	"log"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"

	"github.com/google/uuid"
)

// UIMode is what the client is told to render after an answer.
type UIMode string

const (
	UIDisabled   UIMode = "disabled"
	UIFull       UIMode = "full"
	UISimplified UIMode = "simplified"
	UIExcluded   UIMode = "excluded"
)

// AnonymousPolicy decides what anonymous users may submit.
type AnonymousPolicy string

const (
	AnonFull       AnonymousPolicy = "full"
	AnonSimplified AnonymousPolicy = "simplified"
	AnonExcluded   AnonymousPolicy = "excluded"
)

// Feedback destinations, in routing priority order.
const (
	RouteExpert    = "expert"
	RouteFAQ       = "faq"
	RouteKnowledge = "knowledge"
)

// Config encapsulates feedback collection parameters
type Config struct {
	Enabled         bool
	AnonymousPolicy AnonymousPolicy
	TrustThreshold  float64
}

func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		AnonymousPolicy: AnonSimplified,
		TrustThreshold:  0.7,
	}
}

// Engine owns feedback collection: the UI decision at the tail of the
// answer pipeline, and routing plus trust gating when a submission arrives.
type Engine struct {
	cfg    Config
	logger *log.Logger
}

func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if cfg.TrustThreshold <= 0 {
		cfg.TrustThreshold = DefaultConfig().TrustThreshold
	}
	return &Engine{cfg: cfg, logger: logger}
}

// ShowUIAdapter decides whether and how the feedback UI is offered. It runs
// strictly after delivery, so a response id is already known when one exists.
func (e *Engine) ShowUIAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    "feedback_show_ui",
		Mapping: flow.FieldMap{Home: flow.SectionFeedback, Mirrors: []string{"feedback_ui"}},
		Run:     e.showUI,
	}
}

func (e *Engine) showUI(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	responseID := ""
	if raw, ok := view.Flat("response_id"); ok {
		responseID, _ = raw.(string)
	}
	anonymous := view.GetBool(flow.SectionFeedback, "anonymous")

	mode, cause := e.UIFor(responseID != "", anonymous)
	fields := map[string]any{
		"feedback_ui":      string(mode),
		"feedback_enabled": mode == UIFull || mode == UISimplified,
	}
	if cause != "" {
		fields["feedback_ui_cause"] = cause
	}
	return flow.Patch{
		Fields:    fields,
		Decisions: map[string]any{"feedback_ui": string(mode)},
		Stage:     flow.StageFeedback,
	}
}

// UIFor resolves the feedback form mode for one delivered (or missing)
// response. The pipeline tail and the options endpoint share this policy.
func (e *Engine) UIFor(hasResponseID, anonymous bool) (UIMode, string) {
	if !e.cfg.Enabled {
		return UIDisabled, "globally_disabled"
	}
	if !hasResponseID {
		return UIDisabled, "no_response_id"
	}
	if anonymous {
		switch e.cfg.AnonymousPolicy {
		case AnonExcluded:
			return UIExcluded, "anonymous_excluded"
		case AnonSimplified:
			return UISimplified, ""
		}
	}
	return UIFull, ""
}

// Submission is one user's feedback on a delivered response.
type Submission struct {
	ResponseID string

	// Route is the caller's explicit destination hint, may be empty.
	Route string

	// ExpertID is set when an authenticated expert submits a review.
	ExpertID *uuid.UUID

	Rating    int
	Comment   string
	Anonymous bool

	// Context carries signals captured at answer time, e.g. the answer
	// path, for contextual routing.
	Context map[string]any
}

// ResolveRoute picks the destination: an expert identity always wins, then
// the explicit hint, then the contextual signal from how the answer was
// produced.
func (e *Engine) ResolveRoute(sub Submission) string {
	if sub.ExpertID != nil {
		return RouteExpert
	}
	switch sub.Route {
	case RouteExpert, RouteFAQ, RouteKnowledge:
		return sub.Route
	}
	if path, ok := sub.Context["answer_path"].(string); ok && path == "golden" {
		return RouteFAQ
	}
	return RouteKnowledge
}

// GateResult is the trust-gate outcome for expert-routed feedback. A
// rejection is terminal; reason and score survive for audit.
type GateResult struct {
	Accepted bool
	Reason   string
	Score    float64
}

// TrustGate admits expert feedback only above the configured score. This is
// the single place input is permanently discarded.
func (e *Engine) TrustGate(score float64) GateResult {
	if score >= e.cfg.TrustThreshold {
		return GateResult{Accepted: true, Score: score}
	}
	e.logger.Printf("[FEEDBACK] trust gate rejected score=%.3f threshold=%.2f", score, e.cfg.TrustThreshold)
	return GateResult{
		Accepted: false,
		Reason:   fmt.Sprintf("trust score %.3f below threshold %.2f", score, e.cfg.TrustThreshold),
		Score:    score,
	}
}
