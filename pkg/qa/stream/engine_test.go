package stream

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
)

type fakeWriter struct {
	chunks   []string
	failAt   int // seq to start failing at; -1 never fails
	failWith error
	done     bool
	closed   bool
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{failAt: -1}
}

func (f *fakeWriter) WriteChunk(ctx context.Context, seq int, text string) error {
	if f.failAt >= 0 && seq >= f.failAt {
		return f.failWith
	}
	f.chunks = append(f.chunks, text)
	return nil
}

func (f *fakeWriter) WriteDone(ctx context.Context) error {
	f.done = true
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

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

func TestChunksRestoreOriginal(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
	}{
		{"short", "hello", 64},
		{"multi word", "the quick brown fox jumps over the lazy dog", 10},
		{"newlines", "first paragraph\n\nsecond paragraph with more words", 12},
		{"no spaces", strings.Repeat("x", 200), 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunks(tt.text, tt.size)
			if got := strings.Join(chunks, ""); got != tt.text {
				t.Errorf("joined chunks = %q, want %q", got, tt.text)
			}
			for i, c := range chunks {
				if len([]rune(c)) > tt.size {
					t.Errorf("chunk %d longer than size: %d > %d", i, len([]rune(c)), tt.size)
				}
			}
		})
	}
}

func TestChunksEmpty(t *testing.T) {
	if got := Chunks("", 64); got != nil {
		t.Errorf("Chunks(\"\") = %v, want nil", got)
	}
}

func TestGuardExactlyOnce(t *testing.T) {
	guard := NewGuard(time.Minute)
	if !guard.Acquire("req-1") {
		t.Fatal("first acquire must win")
	}
	if guard.Acquire("req-1") {
		t.Error("second acquire must be blocked")
	}
	if !guard.Acquire("req-2") {
		t.Error("other ids must be unaffected")
	}
	guard.Forget("req-1")
	if !guard.Acquire("req-1") {
		t.Error("forget must release the id")
	}
}

func TestSetupNotRequested(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())

	st := flow.NewState("req-1", "sess-1")
	engine.SetupAdapter().Execute(context.Background(), st, nil, testLogger())

	if st.GetBool(flow.SectionStreaming, "streaming_active") {
		t.Error("expected streaming inactive")
	}
	if st.GetBool(flow.SectionStreaming, "fallback_to_single_pass") {
		t.Error("an unrequested stream is not a fallback")
	}
}

func TestSetupWriterMissingFallsBack(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionStreaming, map[string]any{"stream_requested": true})
	engine.SetupAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionStreaming, "fallback_to_single_pass") {
		t.Error("expected fallback_to_single_pass=true")
	}
	if st.GetBool(flow.SectionStreaming, "streaming_active") {
		t.Error("expected streaming inactive")
	}
}

func TestSetupActive(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())
	engine.RegisterWriter("req-1", newFakeWriter())
	defer engine.ReleaseWriter("req-1")

	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionStreaming, map[string]any{"stream_requested": true})
	engine.SetupAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionStreaming, "streaming_active") {
		t.Error("expected streaming_active=true")
	}
}

func streamingState(text string) *flow.State {
	st := flow.NewState("req-1", "sess-1")
	seed(st, flow.SectionStreaming, map[string]any{"stream_requested": true, "streaming_active": true})
	seed(st, flow.SectionLLM, map[string]any{"response_text": text}, "response_text")
	return st
}

func TestWriteComplete(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 5
	engine := NewEngine(cfg, testLogger())
	writer := newFakeWriter()
	engine.RegisterWriter("req-1", writer)

	st := streamingState("aaaa bbbb cccc dddd eeee")
	engine.WriteAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionStreaming, "stream_complete") {
		t.Fatal("expected stream_complete=true")
	}
	if got := st.GetInt(flow.SectionStreaming, "chunks_written"); got != 5 {
		t.Errorf("chunks_written = %d, want 5", got)
	}
	if strings.Join(writer.chunks, "") != "aaaa bbbb cccc dddd eeee" {
		t.Errorf("frames do not restore the response: %q", writer.chunks)
	}
	if !writer.done {
		t.Error("expected the DONE frame")
	}
	if !writer.closed {
		t.Error("expected the writer closed")
	}
}

func TestWriteDisconnectAfterTwoOfFive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 5
	engine := NewEngine(cfg, testLogger())
	writer := newFakeWriter()
	writer.failAt = 2
	writer.failWith = ErrClientGone
	engine.RegisterWriter("req-1", writer)

	st := streamingState("aaaa bbbb cccc dddd eeee")
	engine.WriteAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionStreaming, "disconnect") {
		t.Fatal("expected disconnect=true")
	}
	if got := st.GetInt(flow.SectionStreaming, "chunks_written"); got != 2 {
		t.Errorf("chunks_written = %d, want 2", got)
	}
	if got := st.GetInt(flow.SectionStreaming, "chunks_attempted"); got != 5 {
		t.Errorf("chunks_attempted = %d, want 5", got)
	}
	if !st.GetBool(flow.SectionStreaming, "cleanup_triggered") {
		t.Error("expected cleanup_triggered=true")
	}
	if len(writer.chunks) != 2 {
		t.Errorf("writes after disconnect: %d frames", len(writer.chunks))
	}
	if writer.done {
		t.Error("DONE frame must not follow a disconnect")
	}
	if !writer.closed {
		t.Error("expected the writer closed on cleanup")
	}
	if st.GetBool(flow.SectionStreaming, "buffer_full") {
		t.Error("disconnect must not be reported as buffer_full")
	}
}

func TestWriteBufferFullDistinct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 5
	engine := NewEngine(cfg, testLogger())
	writer := newFakeWriter()
	writer.failAt = 1
	writer.failWith = ErrBufferFull
	engine.RegisterWriter("req-1", writer)

	st := streamingState("aaaa bbbb cccc")
	engine.WriteAdapter().Execute(context.Background(), st, nil, testLogger())

	if !st.GetBool(flow.SectionStreaming, "buffer_full") {
		t.Error("expected buffer_full=true")
	}
	if st.GetBool(flow.SectionStreaming, "disconnect") {
		t.Error("buffer overflow must not be reported as disconnect")
	}
}

func TestWriteDuplicateBlocked(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 5
	engine := NewEngine(cfg, testLogger())
	first := newFakeWriter()
	engine.RegisterWriter("req-1", first)

	st := streamingState("aaaa bbbb")
	engine.WriteAdapter().Execute(context.Background(), st, nil, testLogger())

	second := newFakeWriter()
	engine.RegisterWriter("req-1", second)
	engine.WriteAdapter().Execute(context.Background(), st, nil, testLogger())

	if got := st.GetString(flow.SectionStreaming, "skip_cause"); got != "already_streamed" {
		t.Errorf("skip_cause = %q, want already_streamed", got)
	}
	if len(second.chunks) != 0 {
		t.Error("second emission must write nothing")
	}
	engine.ReleaseWriter("req-1")
}

func TestFrameFormatting(t *testing.T) {
	if got := string(FrameData("hello")); got != "data: hello\n\n" {
		t.Errorf("FrameData = %q", got)
	}
	if got := string(FrameData("line1\nline2")); got != "data: line1\ndata: line2\n\n" {
		t.Errorf("multi-line FrameData = %q", got)
	}
	if got := string(FrameDone()); got != "data: [DONE]\n\n" {
		t.Errorf("FrameDone = %q", got)
	}
}
