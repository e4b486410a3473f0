package tools

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
)

type stubHandler struct {
	kind  Kind
	text  string
	err   error
	block bool
	calls int
}

func (s *stubHandler) Kind() Kind { return s.kind }

func (s *stubHandler) Definition() llm.Tool {
	return llm.Tool{Name: string(s.kind)}
}

func (s *stubHandler) Execute(ctx context.Context, args map[string]any) (string, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func seed(st *flow.State, section flow.Section, fields map[string]any) {
	a := &flow.Adapter{
		Name:    "seed",
		Mapping: flow.FieldMap{Home: section},
		Run: func(_ context.Context, _ []llm.Message, _ flow.View) flow.Patch {
			return flow.Patch{Fields: fields}
		},
	}
	a.Execute(context.Background(), st, nil, testLogger())
}

func requested(calls ...llm.ToolCall) map[string]any {
	return map[string]any{"tool_calls": calls}
}

func TestExecutePartialFailure(t *testing.T) {
	kb := &stubHandler{kind: KindKBSearch, text: "ET art. 34: working time is..."}
	agreements := &stubHandler{kind: KindAgreementLookup, err: errors.New("registry down")}

	engine := NewEngine(DefaultConfig(), testLogger())
	engine.Register(kb)
	engine.Register(agreements)

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, requested(
		llm.ToolCall{ID: "call_0", Name: "kb_search", Arguments: map[string]any{"query": "working time"}},
		llm.ToolCall{ID: "call_1", Name: "agreement_lookup", Arguments: map[string]any{"sector": "metal"}},
	))

	engine.ExecuteAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionTools, "tool_success") {
		t.Error("expected tool_success=true with one surviving source")
	}
	if !st.GetBool(flow.SectionTools, "partial_failure") {
		t.Error("expected partial_failure=true")
	}
	if st.GetBool(flow.SectionTools, "tool_failed") {
		t.Error("tool_failed must stay false when a source survived")
	}
	if st.GetBool(flow.SectionTools, "timeout") {
		t.Error("a plain source error must not be reported as a timeout")
	}

	raw, ok := st.Get(flow.SectionTools, "failed_sources")
	if !ok {
		t.Fatal("expected failed_sources recorded")
	}
	failed, _ := raw.([]string)
	if len(failed) != 1 || failed[0] != "agreement_lookup" {
		t.Errorf("failed_sources = %v, want [agreement_lookup]", failed)
	}

	transcript := mustTranscript(t, st)
	// assistant summary + one tool message per call
	if len(transcript) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(transcript))
	}
	if transcript[1].ToolCallID != "call_0" || transcript[1].Content == "" {
		t.Errorf("unexpected tool message: %+v", transcript[1])
	}
	if transcript[2].ToolCallID != "call_1" {
		t.Errorf("failed call must still answer its tool_call_id, got %+v", transcript[2])
	}
}

func TestExecuteAllFailed(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())
	engine.Register(&stubHandler{kind: KindKBSearch, err: errors.New("down")})

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, requested(
		llm.ToolCall{ID: "call_0", Name: "kb_search", Arguments: map[string]any{}},
	))

	engine.ExecuteAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionTools, "tool_failed") {
		t.Error("expected tool_failed=true when every source failed")
	}
	if st.GetBool(flow.SectionTools, "tool_success") {
		t.Error("expected tool_success=false")
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, requested(
		llm.ToolCall{ID: "call_0", Name: "launch_rockets", Arguments: map[string]any{}},
	))

	engine.ExecuteAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionTools, "tool_failed") {
		t.Error("unknown tool must count as a failed source")
	}
}

func TestExecuteCallTimeout(t *testing.T) {
	cfg := Config{CallTimeout: 10 * time.Millisecond}
	engine := NewEngine(cfg, testLogger())
	engine.Register(&stubHandler{kind: KindKBSearch, block: true})

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, requested(
		llm.ToolCall{ID: "call_0", Name: "kb_search", Arguments: map[string]any{}},
	))

	start := time.Now()
	engine.ExecuteAdapter().Execute(context.Background(), st, nil, testLogger())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call timeout not enforced, took %s", elapsed)
	}

	if !st.GetBool(flow.SectionTools, "tool_failed") {
		t.Error("expected timed-out source to be reported failed")
	}
	if st.GetBool(flow.SectionTools, "tool_success") {
		t.Error("expected tool_success=false on timeout")
	}
	if !st.GetBool(flow.SectionTools, "timeout") {
		t.Error("expected timeout=true to distinguish deadline expiry from plain failure")
	}
}

func TestExecuteNoCallsIsNoop(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())

	st := flow.NewState("req-1", "sess-1")
	engine.ExecuteAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionTools, "tool_noop") {
		t.Error("expected tool_noop=true with nothing requested")
	}
	if st.GetInt(flow.SectionTools, "tool_rounds") != 0 {
		t.Error("noop must not consume a round")
	}
}

func TestTranscriptAccumulatesAcrossRounds(t *testing.T) {
	kb := &stubHandler{kind: KindKBSearch, text: "passage"}
	engine := NewEngine(DefaultConfig(), testLogger())
	engine.Register(kb)

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, requested(llm.ToolCall{ID: "call_0", Name: "kb_search"}))
	engine.ExecuteAdapter().Execute(context.Background(), st, nil, testLogger())

	seed(st, flow.SectionLLM, requested(llm.ToolCall{ID: "call_1", Name: "kb_search"}))
	engine.ExecuteAdapter().Execute(context.Background(), st, nil, testLogger())

	if got := st.GetInt(flow.SectionTools, "tool_rounds"); got != 2 {
		t.Errorf("tool_rounds = %d, want 2", got)
	}
	transcript := mustTranscript(t, st)
	// two rounds of (assistant summary + tool result)
	if len(transcript) != 4 {
		t.Errorf("transcript length = %d, want 4", len(transcript))
	}
	if kb.calls != 2 {
		t.Errorf("handler calls = %d, want 2", kb.calls)
	}
}

func TestDefinitionsSorted(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())
	engine.Register(&stubHandler{kind: KindKBSearch})
	engine.Register(&stubHandler{kind: KindAgreementLookup})
	engine.Register(&stubHandler{kind: KindFAQSearch})

	defs := engine.Definitions()
	if len(defs) != 3 {
		t.Fatalf("definitions = %d, want 3", len(defs))
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].Name > defs[i].Name {
			t.Errorf("definitions out of order: %s before %s", defs[i-1].Name, defs[i].Name)
		}
	}
}

func mustTranscript(t *testing.T, st *flow.State) []llm.Message {
	t.Helper()
	raw, ok := st.Get(flow.SectionTools, "transcript")
	if !ok {
		t.Fatal("expected transcript recorded")
	}
	transcript, ok := raw.([]llm.Message)
	if !ok {
		t.Fatalf("transcript has unexpected type %T", raw)
	}
	return transcript
}
