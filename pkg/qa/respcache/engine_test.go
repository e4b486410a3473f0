package respcache

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

type stubClient struct {
	value  string
	found  bool
	getErr error
	setErr error
	sets   map[string]string
}

func (s *stubClient) Get(ctx context.Context, key string) (string, bool, error) {
	return s.value, s.found, s.getErr
}

func (s *stubClient) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	if s.sets == nil {
		s.sets = make(map[string]string)
	}
	s.sets[key] = value
	return nil
}

// blockingClient never answers before the check timeout expires.
type blockingClient struct{}

func (b *blockingClient) Get(ctx context.Context, key string) (string, bool, error) {
	<-ctx.Done()
	return "", false, ctx.Err()
}

func (b *blockingClient) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

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

func TestFingerprintNormalization(t *testing.T) {
	base := Fingerprint(askMessages("How many vacation days per year?"))

	tests := []struct {
		name    string
		content string
		same    bool
	}{
		{"identical", "How many vacation days per year?", true},
		{"case folded", "HOW MANY Vacation DAYS per year?", true},
		{"whitespace collapsed", "  How   many\tvacation days\nper year?  ", true},
		{"different question", "How many sick days per year?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint(askMessages(tt.content))
			if (got == base) != tt.same {
				t.Errorf("fingerprint equality = %v, want %v", got == base, tt.same)
			}
		})
	}
}

func TestFingerprintRoleSensitive(t *testing.T) {
	user := Fingerprint([]llm.Message{{Role: "user", Content: "hello"}})
	assistant := Fingerprint([]llm.Message{{Role: "assistant", Content: "hello"}})
	if user == assistant {
		t.Error("expected role to participate in the fingerprint")
	}
}

func TestCheckHitMirrorsResponse(t *testing.T) {
	engine := NewEngine(&stubClient{value: "cached answer", found: true}, DefaultConfig(), testLogger())

	st := flow.NewState("req-1", "sess-1")
	engine.CheckAdapter().Execute(context.Background(), st, askMessages("q"), testLogger())

	if !st.GetBool(flow.SectionCache, "cache_hit") {
		t.Fatal("expected cache_hit=true")
	}
	got, ok := st.Flat("response_text")
	if !ok || got != "cached answer" {
		t.Errorf("Flat(response_text) = %v, %v; want cached answer", got, ok)
	}
	if !st.DecisionBool("cache_hit") {
		t.Error("expected decision cache_hit=true")
	}
}

func TestCheckMiss(t *testing.T) {
	engine := NewEngine(&stubClient{found: false}, DefaultConfig(), testLogger())

	st := flow.NewState("req-1", "sess-1")
	engine.CheckAdapter().Execute(context.Background(), st, askMessages("q"), testLogger())

	if st.GetBool(flow.SectionCache, "cache_hit") {
		t.Error("expected cache_hit=false")
	}
	if st.GetString(flow.SectionCache, "fingerprint") == "" {
		t.Error("expected fingerprint recorded on miss for the later write")
	}
}

func TestCheckFailOpen(t *testing.T) {
	tests := []struct {
		name   string
		client Client
	}{
		{"backend error", &stubClient{getErr: errors.New("connection refused")}},
		{"timeout", &blockingClient{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckTimeout = 10 * time.Millisecond
			engine := NewEngine(tt.client, cfg, testLogger())

			st := flow.NewState("req-1", "sess-1")
			engine.CheckAdapter().Execute(context.Background(), st, askMessages("q"), testLogger())

			if st.GetBool(flow.SectionCache, "cache_hit") {
				t.Error("expected cache_hit=false on failure")
			}
			if !st.GetBool(flow.SectionCache, "cache_error_ignored") {
				t.Error("expected cache_error_ignored diagnostic flag")
			}
		})
	}
}

func TestWriteStoresResponse(t *testing.T) {
	client := &stubClient{found: false}
	engine := NewEngine(client, DefaultConfig(), testLogger())
	messages := askMessages("q")

	st := flow.NewState("req-1", "sess-1")
	engine.CheckAdapter().Execute(context.Background(), st, messages, testLogger())
	seed(st, flow.SectionLLM, map[string]any{"response_text": "fresh answer"}, "response_text")

	engine.WriteAdapter().Execute(context.Background(), st, messages, testLogger())

	key := Fingerprint(messages)
	if client.sets[key] != "fresh answer" {
		t.Errorf("stored %q under %q, want fresh answer", client.sets[key], key)
	}
	if !st.DecisionBool("cache_written") {
		t.Error("expected decision cache_written=true")
	}
}

func TestWriteSkipsOnHit(t *testing.T) {
	client := &stubClient{value: "cached", found: true}
	engine := NewEngine(client, DefaultConfig(), testLogger())
	messages := askMessages("q")

	st := flow.NewState("req-1", "sess-1")
	engine.CheckAdapter().Execute(context.Background(), st, messages, testLogger())
	engine.WriteAdapter().Execute(context.Background(), st, messages, testLogger())

	if len(client.sets) != 0 {
		t.Errorf("expected no writes after a hit, got %v", client.sets)
	}
}

func TestWriteFailureFlaggedNotRaised(t *testing.T) {
	engine := NewEngine(&stubClient{setErr: errors.New("oom")}, DefaultConfig(), testLogger())
	messages := askMessages("q")

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionLLM, map[string]any{"response_text": "fresh answer"}, "response_text")

	engine.WriteAdapter().Execute(context.Background(), st, messages, testLogger())

	if !st.GetBool(flow.SectionCache, "cache_write_failed") {
		t.Error("expected cache_write_failed flag")
	}
	if _, ok := st.Decision("cache_written"); !ok {
		t.Error("expected cache_written recorded")
	}
	if st.DecisionBool("cache_written") {
		t.Error("expected decision cache_written=false")
	}
}

func TestMemoryClientRoundTrip(t *testing.T) {
	client := NewMemoryClient(time.Minute)
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, found, err := client.Get(ctx, "k")
	if err != nil || !found || value != "v" {
		t.Errorf("get = %q, %v, %v; want v, true, nil", value, found, err)
	}

	_, found, err = client.Get(ctx, "absent")
	if err != nil || found {
		t.Errorf("absent get = %v, %v; want miss without error", found, err)
	}
}
