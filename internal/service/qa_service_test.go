package service

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/google/uuid"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
	"regassist-be/pkg/qa/invoke"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func askMessages(content string) []llm.Message {
	return []llm.Message{{Role: "user", Content: content}}
}

// seed pushes fields into the state through a throwaway step so tests can
// arrange preconditions the same way the pipeline would.
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

// newRoutingService builds the bare service the router needs: the retry
// branch consults the invoke engine, every other branch reads the state.
func newRoutingService() *qaService {
	cfg := invoke.DefaultConfig()
	cfg.MaxAttempts = 2
	return &qaService{
		invokeEngine:   invoke.NewEngine(cfg, testLogger()),
		pipelineLogger: testLogger(),
	}
}

func TestRouteDecisionTable(t *testing.T) {
	qs := newRoutingService()

	tests := []struct {
		name    string
		current string
		arrange func(st *flow.State)
		want    string
	}{
		{
			name:    "gate passed enters curated lookup",
			current: stepGoldenGate,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionGolden, map[string]any{"gate_passed": true})
			},
			want: stepGoldenLookup,
		},
		{
			name:    "gate skipped falls to cache",
			current: stepGoldenGate,
			want:    stepCacheCheck,
		},
		{
			name:    "lookup match serves directly",
			current: stepGoldenLookup,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionGolden, map[string]any{"serve_direct": true})
			},
			want: stepGoldenServe,
		},
		{
			name:    "lookup near match checks newer documents",
			current: stepGoldenLookup,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionGolden, map[string]any{"needs_kb_check": true})
			},
			want: stepKBContextCheck,
		},
		{
			name:    "lookup miss falls to cache",
			current: stepGoldenLookup,
			want:    stepCacheCheck,
		},
		{
			name:    "document check always proceeds to serve",
			current: stepKBContextCheck,
			want:    stepGoldenServe,
		},
		{
			name:    "served answer goes to stream setup",
			current: stepGoldenServe,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionGolden, map[string]any{"golden_served": true})
			},
			want: stepStreamSetup,
		},
		{
			name:    "abandoned serve falls to cache",
			current: stepGoldenServe,
			want:    stepCacheCheck,
		},
		{
			name:    "cache hit goes to stream setup",
			current: stepCacheCheck,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionCache, map[string]any{"cache_hit": true})
			},
			want: stepStreamSetup,
		},
		{
			name:    "cache miss selects a provider",
			current: stepCacheCheck,
			want:    stepProviderSelect,
		},
		{
			name:    "no endpoint degrades at delivery",
			current: stepProviderSelect,
			want:    stepDeliver,
		},
		{
			name:    "endpoint selected invokes the model",
			current: stepProviderSelect,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionLLM, map[string]any{"provider": "ollama"})
			},
			want: stepLLMInvoke,
		},
		{
			name:    "tool request runs the tools",
			current: stepLLMInvoke,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionLLM, map[string]any{"needs_tools": true})
			},
			want: stepToolExecute,
		},
		{
			name:    "successful completion is cached",
			current: stepLLMInvoke,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionLLM, map[string]any{"llm_success": true})
			},
			want: stepCacheWrite,
		},
		{
			name:    "retryable failure reselects within budget",
			current: stepLLMInvoke,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionLLM, map[string]any{"retryable": true, "llm_attempts": 1})
			},
			want: stepProviderSelect,
		},
		{
			name:    "retry budget exhausted delivers",
			current: stepLLMInvoke,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionLLM, map[string]any{"retryable": true, "llm_attempts": 2})
			},
			want: stepDeliver,
		},
		{
			name:    "fatal failure delivers",
			current: stepLLMInvoke,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionLLM, map[string]any{"retryable": false, "llm_attempts": 1})
			},
			want: stepDeliver,
		},
		{
			name:    "tool results loop back to the model",
			current: stepToolExecute,
			want:    stepLLMInvoke,
		},
		{
			name:    "cache write goes to stream setup",
			current: stepCacheWrite,
			want:    stepStreamSetup,
		},
		{
			name:    "active stream writes frames",
			current: stepStreamSetup,
			arrange: func(st *flow.State) {
				seed(st, flow.SectionStreaming, map[string]any{"streaming_active": true})
			},
			want: stepStreamWrite,
		},
		{
			name:    "no stream delivers in one pass",
			current: stepStreamSetup,
			want:    stepDeliver,
		},
		{
			name:    "stream write delivers",
			current: stepStreamWrite,
			want:    stepDeliver,
		},
		{
			name:    "delivery shows the feedback prompt",
			current: stepDeliver,
			want:    stepFeedbackUI,
		},
		{
			name:    "feedback prompt completes the request",
			current: stepFeedbackUI,
			want:    stepComplete,
		},
		{
			name:    "unknown step halts routing",
			current: "no_such_step",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := flow.NewState("req-1", "sess-1")
			if tt.arrange != nil {
				tt.arrange(st)
			}
			if got := qs.route(tt.current, st); got != tt.want {
				t.Errorf("route(%s) = %q, want %q", tt.current, got, tt.want)
			}
		})
	}
}

func TestReceiveSeedsRequestFields(t *testing.T) {
	responseId := uuid.New()

	st := flow.NewState("req-1", "sess-1")
	receiveAdapter(true, true, false, responseId).Execute(context.Background(), st, askMessages("q"), testLogger())

	if !st.GetBool(flow.SectionFeedback, "anonymous") {
		t.Error("expected anonymous=true")
	}
	if got := st.GetString(flow.SectionFeedback, "response_id_candidate"); got != responseId.String() {
		t.Errorf("response_id_candidate = %q, want %q", got, responseId)
	}
	if !st.GetBool(flow.SectionStreaming, "stream_requested") {
		t.Error("expected stream_requested=true")
	}
	if st.GetBool(flow.SectionGolden, "bypass_requested") {
		t.Error("bypass seeded without being requested")
	}
	if st.Stage() != flow.StageReceived {
		t.Errorf("stage = %q, want %q", st.Stage(), flow.StageReceived)
	}
}

func TestReceiveSeedsCuratedBypass(t *testing.T) {
	st := flow.NewState("req-1", "sess-1")
	receiveAdapter(false, false, true, uuid.New()).Execute(context.Background(), st, askMessages("q"), testLogger())

	if !st.GetBool(flow.SectionGolden, "bypass_requested") {
		t.Error("expected bypass_requested=true")
	}
}

func TestDeliverPromotesResponseId(t *testing.T) {
	qs := newRoutingService()
	responseId := uuid.New()

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionFeedback, map[string]any{"response_id_candidate": responseId.String()})
	seed(st, flow.SectionLLM, map[string]any{"response_text": "Forty hours."}, "response_text")

	qs.deliverAdapter().Execute(context.Background(), st, askMessages("q"), testLogger())

	if got := st.GetString(flow.SectionFeedback, "response_id"); got != responseId.String() {
		t.Errorf("response_id = %q, want %q", got, responseId)
	}
	if !st.GetBool(flow.SectionStreaming, "response_complete") {
		t.Error("expected response_complete=true")
	}
	if path, _ := st.Decision("answer_path"); path != "llm" {
		t.Errorf("answer_path = %v, want llm", path)
	}
	if mode, _ := st.Decision("delivery"); mode != "single_pass" {
		t.Errorf("delivery = %v, want single_pass", mode)
	}
	if st.Completed() {
		t.Error("delivery must not complete the request; the feedback step still runs")
	}
}

func TestDeliverStampsStreamMode(t *testing.T) {
	tests := []struct {
		name      string
		streaming map[string]any
		want      string
	}{
		{"full stream", map[string]any{"stream_complete": true}, "stream"},
		{"client went away", map[string]any{"disconnect": true}, "stream_interrupted"},
		{"no stream", map[string]any{}, "single_pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := newRoutingService()
			st := flow.NewState("req-1", "sess-1")
			seed(st, flow.SectionLLM, map[string]any{"response_text": "answer"}, "response_text")
			seed(st, flow.SectionStreaming, tt.streaming)

			qs.deliverAdapter().Execute(context.Background(), st, askMessages("q"), testLogger())

			if mode, _ := st.Decision("delivery"); mode != tt.want {
				t.Errorf("delivery = %v, want %q", mode, tt.want)
			}
		})
	}
}

func TestDeliverWithoutAnswerTerminates(t *testing.T) {
	qs := newRoutingService()

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, map[string]any{"error_message": "all attempts failed"})

	qs.deliverAdapter().Execute(context.Background(), st, askMessages("q"), testLogger())

	if !st.Completed() {
		t.Fatal("expected a failed delivery to complete the pipeline")
	}
	if mode, _ := st.Decision("delivery"); mode != "failed" {
		t.Errorf("delivery = %v, want failed", mode)
	}
	if cause, _ := st.Decision("failed_cause"); cause != "all attempts failed" {
		t.Errorf("failed_cause = %v, want the invoke error", cause)
	}
	if st.GetBool(flow.SectionStreaming, "response_complete") {
		t.Error("expected response_complete=false")
	}
}

func TestAnswerPathPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		arrange func(st *flow.State)
		want    string
	}{
		{
			name: "golden beats everything",
			arrange: func(st *flow.State) {
				seed(st, flow.SectionGolden, map[string]any{"golden_served": true})
				seed(st, flow.SectionCache, map[string]any{"cache_hit": true})
			},
			want: "golden",
		},
		{
			name: "cache beats the model",
			arrange: func(st *flow.State) {
				seed(st, flow.SectionCache, map[string]any{"cache_hit": true})
				seed(st, flow.SectionTools, map[string]any{"tool_rounds": 1})
			},
			want: "cache",
		},
		{
			name: "tool rounds mark the tooled path",
			arrange: func(st *flow.State) {
				seed(st, flow.SectionTools, map[string]any{"tool_rounds": 2})
			},
			want: "llm_tools",
		},
		{
			name:    "plain model answer",
			arrange: func(st *flow.State) {},
			want:    "llm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := flow.NewState("req-1", "sess-1")
			tt.arrange(st)
			if got := answerPath(st); got != tt.want {
				t.Errorf("answerPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildResponseDelivered(t *testing.T) {
	qs := newRoutingService()
	sessionId := uuid.New()
	responseId := uuid.New()

	st := flow.NewState("req-1", sessionId.String())
	seed(st, flow.SectionGolden, map[string]any{
		"golden_served":    true,
		"citations":        []string{"Labor Code §112"},
		"kb_delta_sources": []string{"Wage Decree 2024/II"},
	})
	seed(st, flow.SectionLLM, map[string]any{"response_text": "Twenty working days."}, "response_text")
	seed(st, flow.SectionFeedback, map[string]any{
		"response_id_candidate": responseId.String(),
		"feedback_ui":           "full",
	})
	seed(st, flow.SectionStreaming, map[string]any{"stream_complete": true})

	qs.deliverAdapter().Execute(context.Background(), st, askMessages("q"), testLogger())

	resp := qs.buildResponse(sessionId, "req-1", responseId, st)

	if resp.Failed {
		t.Fatalf("unexpected failure: %s", resp.FailedCause)
	}
	if resp.Answer != "Twenty working days." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if !resp.Streamed {
		t.Error("expected streamed=true")
	}
	if resp.AnswerPath != "golden" {
		t.Errorf("answer_path = %q, want golden", resp.AnswerPath)
	}
	if resp.FeedbackUI != "full" {
		t.Errorf("feedback_ui = %q, want full", resp.FeedbackUI)
	}
	if resp.ResponseId == nil || *resp.ResponseId != responseId {
		t.Errorf("response_id = %v, want %s", resp.ResponseId, responseId)
	}
	if len(resp.Citations) != 2 {
		t.Fatalf("citations = %d, want curated label plus delta source", len(resp.Citations))
	}
	if resp.Citations[0].Label != "Labor Code §112" || resp.Citations[1].Label != "Wage Decree 2024/II" {
		t.Errorf("citation labels = %q, %q", resp.Citations[0].Label, resp.Citations[1].Label)
	}
}

func TestBuildResponseFailed(t *testing.T) {
	qs := newRoutingService()
	sessionId := uuid.New()

	st := flow.NewState("req-1", sessionId.String())
	seed(st, flow.SectionLLM, map[string]any{"error_message": "provider timeout"})
	qs.deliverAdapter().Execute(context.Background(), st, askMessages("q"), testLogger())

	resp := qs.buildResponse(sessionId, "req-1", uuid.New(), st)

	if !resp.Failed {
		t.Fatal("expected failed response")
	}
	if resp.FailedCause != "provider timeout" {
		t.Errorf("failed_cause = %q", resp.FailedCause)
	}
	if resp.ResponseId != nil {
		t.Error("failed responses must not carry a response id")
	}
	if resp.AnswerPath != "none" {
		t.Errorf("answer_path = %q, want none", resp.AnswerPath)
	}
	if len(resp.Citations) != 0 {
		t.Errorf("citations = %d, want none", len(resp.Citations))
	}
}

func TestTitleFromQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"short question kept", "How many vacation days?", "How many vacation days?"},
		{"whitespace collapsed", "  How   many\tvacation days? ", "How many vacation days?"},
		{"long question truncated", strings.Repeat("x", 70), strings.Repeat("x", 60) + "..."},
		{"truncation counts runes", strings.Repeat("é", 70), strings.Repeat("é", 60) + "..."},
		{"empty falls back", "", "Unnamed session"},
		{"blank falls back", "   ", "Unnamed session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFromQuestion(tt.question); got != tt.want {
				t.Errorf("titleFromQuestion(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}
