package invoke

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
)

type fakeProvider struct {
	completion *llm.Completion
	err        error
	calls      int
	gotOpts    llm.Options
	gotHistory []llm.Message
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	f.calls++
	f.gotHistory = history
	var o llm.Options
	for _, opt := range options {
		opt(&o)
	}
	f.gotOpts = o
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
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

func newEngine(cfg Config, primary llm.LLMProvider) *Engine {
	e := NewEngine(cfg, testLogger())
	e.RegisterProvider(cfg.Primary.Provider, primary)
	return e
}

func TestSelectPrimaryFirstAttempt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fallback = &Endpoint{Provider: "huggingface", Model: "meta-llama/Llama-3.1-8B-Instruct"}
	engine := newEngine(cfg, &fakeProvider{})
	engine.RegisterProvider("huggingface", &fakeProvider{})

	st := flow.NewState("req-1", "sess-1")
	engine.SelectAdapter().Execute(context.Background(), st, nil, testLogger())

	if got := st.GetString(flow.SectionLLM, "provider"); got != "ollama" {
		t.Errorf("provider = %q, want ollama", got)
	}
	if st.GetBool(flow.SectionLLM, "fallback_active") {
		t.Error("fallback must not be active on the first attempt")
	}
}

func TestSelectFallbackAfterFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fallback = &Endpoint{Provider: "huggingface", Model: "meta-llama/Llama-3.1-8B-Instruct"}
	engine := newEngine(cfg, &fakeProvider{})
	engine.RegisterProvider("huggingface", &fakeProvider{})

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, map[string]any{"llm_attempts": 1, "retryable": true})
	engine.SelectAdapter().Execute(context.Background(), st, nil, testLogger())

	if got := st.GetString(flow.SectionLLM, "provider"); got != "huggingface" {
		t.Errorf("provider = %q, want huggingface fallback", got)
	}
	if !st.GetBool(flow.SectionLLM, "fallback_active") {
		t.Error("expected fallback_active=true on retry")
	}
}

func TestSelectUnregisteredProviderFatal(t *testing.T) {
	cfg := DefaultConfig()
	engine := NewEngine(cfg, testLogger()) // nothing registered

	st := flow.NewState("req-1", "sess-1")
	engine.SelectAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionLLM, "llm_failed") {
		t.Fatal("expected llm_failed=true")
	}
	if st.GetBool(flow.SectionLLM, "retryable") {
		t.Error("missing provider must not be retryable")
	}
}

func TestInvokeSuccess(t *testing.T) {
	provider := &fakeProvider{completion: &llm.Completion{
		Content: "Statutory vacation is 30 calendar days.",
		Usage:   llm.Usage{PromptTokens: 120, CompletionTokens: 35},
		Model:   "llama3.1:8b",
	}}
	engine := newEngine(DefaultConfig(), provider)

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, map[string]any{"provider": "ollama", "model": "llama3.1:8b"})
	engine.InvokeAdapter().Execute(context.Background(), st, []llm.Message{{Role: "user", Content: "q"}}, testLogger())

	if !st.GetBool(flow.SectionLLM, "llm_success") {
		t.Fatal("expected llm_success=true")
	}
	got, ok := st.Flat("response_text")
	if !ok || got != "Statutory vacation is 30 calendar days." {
		t.Errorf("Flat(response_text) = %v, %v", got, ok)
	}
	if n := st.GetInt(flow.SectionLLM, "llm_attempts"); n != 1 {
		t.Errorf("llm_attempts = %d, want 1", n)
	}
	if n := st.GetInt(flow.SectionLLM, "prompt_tokens"); n != 120 {
		t.Errorf("prompt_tokens = %d, want 120", n)
	}
	if outcome, _ := st.Decision("llm_outcome"); outcome != "success" {
		t.Errorf("decision llm_outcome = %v, want success", outcome)
	}
}

func TestInvokeRetryableClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"timeout", &llm.ProviderError{Provider: "ollama", Timeout: true, Message: "deadline"}, true},
		{"rate limited", &llm.ProviderError{Provider: "ollama", StatusCode: 429}, true},
		{"server error", &llm.ProviderError{Provider: "ollama", StatusCode: 500}, true},
		{"bad gateway", &llm.ProviderError{Provider: "ollama", StatusCode: 502}, true},
		{"unavailable", &llm.ProviderError{Provider: "ollama", StatusCode: 503}, true},
		{"unauthorized", &llm.ProviderError{Provider: "ollama", StatusCode: 401}, false},
		{"forbidden", &llm.ProviderError{Provider: "ollama", StatusCode: 403}, false},
		{"bad request", &llm.ProviderError{Provider: "ollama", StatusCode: 400}, false},
		{"opaque transport", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(DefaultConfig(), &fakeProvider{err: tt.err})

			st := flow.NewState("req-1", "sess-1")
			seed(st, flow.SectionLLM, map[string]any{"provider": "ollama", "model": "llama3.1:8b"})
			engine.InvokeAdapter().Execute(context.Background(), st, nil, testLogger())

			if !st.GetBool(flow.SectionLLM, "llm_failed") {
				t.Fatal("expected llm_failed=true")
			}
			if got := st.GetBool(flow.SectionLLM, "retryable"); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestInvokeToolCallOutcome(t *testing.T) {
	provider := &fakeProvider{completion: &llm.Completion{
		ToolCalls: []llm.ToolCall{{ID: "call_0", Name: "kb_search", Arguments: map[string]any{"query": "overtime"}}},
		Model:     "llama3.1:8b",
	}}
	engine := newEngine(DefaultConfig(), provider)
	engine.OfferTools([]llm.Tool{{Name: "kb_search"}})

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, map[string]any{"provider": "ollama", "model": "llama3.1:8b"})
	engine.InvokeAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionLLM, "needs_tools") {
		t.Fatal("expected needs_tools=true")
	}
	calls, ok := st.Get(flow.SectionLLM, "tool_calls")
	if !ok {
		t.Fatal("expected tool_calls recorded")
	}
	if tc, ok := calls.([]llm.ToolCall); !ok || len(tc) != 1 || tc[0].Name != "kb_search" {
		t.Errorf("tool_calls = %#v", calls)
	}
	if len(provider.gotOpts.Tools) != 1 {
		t.Errorf("expected tools offered to the model, got %d", len(provider.gotOpts.Tools))
	}
}

func TestInvokeWithholdsToolsAfterBudget(t *testing.T) {
	provider := &fakeProvider{completion: &llm.Completion{Content: "final answer"}}
	cfg := DefaultConfig()
	cfg.MaxToolRounds = 2
	engine := newEngine(cfg, provider)
	engine.OfferTools([]llm.Tool{{Name: "kb_search"}})

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, map[string]any{"provider": "ollama", "model": "llama3.1:8b"})
	seed(st, flow.SectionTools, map[string]any{"tool_rounds": 2})
	engine.InvokeAdapter().Execute(context.Background(), st, nil, testLogger())

	if len(provider.gotOpts.Tools) != 0 {
		t.Errorf("expected no tools offered once the round budget is spent, got %d", len(provider.gotOpts.Tools))
	}
	if !st.GetBool(flow.SectionLLM, "llm_success") {
		t.Error("expected text completion to succeed")
	}
}

func TestInvokeEmptyCompletionIsRetryableFailure(t *testing.T) {
	engine := newEngine(DefaultConfig(), &fakeProvider{completion: &llm.Completion{}})

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, map[string]any{"provider": "ollama", "model": "llama3.1:8b"})
	engine.InvokeAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionLLM, "llm_failed") {
		t.Fatal("expected llm_failed=true")
	}
	if !st.GetBool(flow.SectionLLM, "retryable") {
		t.Error("empty completion should be retryable")
	}
}

func TestShouldRetryBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	engine := newEngine(cfg, &fakeProvider{})

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, map[string]any{"retryable": true, "llm_attempts": 1})
	if !engine.ShouldRetry(st) {
		t.Error("one retryable failure within budget should allow a retry")
	}

	seed(st, flow.SectionLLM, map[string]any{"llm_attempts": 2})
	if engine.ShouldRetry(st) {
		t.Error("budget exhausted, retry must be denied")
	}

	seed(st, flow.SectionLLM, map[string]any{"retryable": false, "llm_attempts": 1})
	if engine.ShouldRetry(st) {
		t.Error("fatal failures must never retry")
	}
}
