package feedback

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"

	"github.com/google/uuid"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func seed(st *flow.State, section flow.Section, fields map[string]any, mirrors ...string) {
	a := &flow.Adapter{
		Name:    "seed",
		Mapping: flow.FieldMap{Home: section, Mirrors: mirrors},
		Run: func(_ context.Context, _ []llm.Message, _ flow.View) flow.Patch {
			return flow.Patch{Fields: fields}
		},
	}
	a.Execute(context.Background(), st, nil, testLogger())
}

func TestShowUI(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		policy     AnonymousPolicy
		responseID string
		anonymous  bool
		wantMode   UIMode
		wantCause  string
	}{
		{"full for identified user", true, AnonSimplified, "resp-1", false, UIFull, ""},
		{"globally disabled", false, AnonSimplified, "resp-1", false, UIDisabled, "globally_disabled"},
		{"no response id", true, AnonSimplified, "", false, UIDisabled, "no_response_id"},
		{"anonymous simplified", true, AnonSimplified, "resp-1", true, UISimplified, ""},
		{"anonymous excluded", true, AnonExcluded, "resp-1", true, UIExcluded, "anonymous_excluded"},
		{"anonymous full policy", true, AnonFull, "resp-1", true, UIFull, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Enabled = tt.enabled
			cfg.AnonymousPolicy = tt.policy
			engine := NewEngine(cfg, testLogger())

			st := flow.NewState("req-1", "sess-1")
			if tt.responseID != "" {
				seed(st, flow.SectionFeedback, map[string]any{"response_id": tt.responseID}, "response_id")
			}
			if tt.anonymous {
				seed(st, flow.SectionFeedback, map[string]any{"anonymous": true})
			}

			engine.ShowUIAdapter().Execute(context.Background(), st, nil, testLogger())

			if got := st.GetString(flow.SectionFeedback, "feedback_ui"); got != string(tt.wantMode) {
				t.Errorf("feedback_ui = %q, want %q", got, tt.wantMode)
			}
			if tt.wantCause != "" {
				if got := st.GetString(flow.SectionFeedback, "feedback_ui_cause"); got != tt.wantCause {
					t.Errorf("feedback_ui_cause = %q, want %q", got, tt.wantCause)
				}
			}
			wantEnabled := tt.wantMode == UIFull || tt.wantMode == UISimplified
			if got := st.GetBool(flow.SectionFeedback, "feedback_enabled"); got != wantEnabled {
				t.Errorf("feedback_enabled = %v, want %v", got, wantEnabled)
			}
		})
	}
}

func TestResolveRoutePriority(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())
	expertID := uuid.New()

	tests := []struct {
		name string
		sub  Submission
		want string
	}{
		{"expert identity beats explicit hint", Submission{ExpertID: &expertID, Route: RouteFAQ}, RouteExpert},
		{"explicit faq", Submission{Route: RouteFAQ}, RouteFAQ},
		{"explicit knowledge", Submission{Route: RouteKnowledge}, RouteKnowledge},
		{"explicit expert without identity", Submission{Route: RouteExpert}, RouteExpert},
		{"contextual golden path", Submission{Context: map[string]any{"answer_path": "golden"}}, RouteFAQ},
		{"contextual llm path", Submission{Context: map[string]any{"answer_path": "llm"}}, RouteKnowledge},
		{"no signals", Submission{}, RouteKnowledge},
		{"unknown hint ignored", Submission{Route: "banana"}, RouteKnowledge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.ResolveRoute(tt.sub); got != tt.want {
				t.Errorf("ResolveRoute = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrustGate(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())

	tests := []struct {
		name     string
		score    float64
		accepted bool
	}{
		{"above threshold", 0.85, true},
		{"at threshold", 0.7, true},
		{"just below", 0.699, false},
		{"zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.TrustGate(tt.score)
			if result.Accepted != tt.accepted {
				t.Errorf("Accepted = %v, want %v", result.Accepted, tt.accepted)
			}
			if result.Score != tt.score {
				t.Errorf("Score = %v, want %v (audit must keep the score)", result.Score, tt.score)
			}
			if !tt.accepted {
				if result.Reason == "" || !strings.Contains(result.Reason, "below threshold") {
					t.Errorf("rejection must carry a reason, got %q", result.Reason)
				}
			}
		})
	}
}
