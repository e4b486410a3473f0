package stream

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
)

// Config encapsulates streaming delivery parameters
type Config struct {
	ChunkSize    int
	WriteTimeout time.Duration
	GuardTTL     time.Duration
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:    64,
		WriteTimeout: 2 * time.Second,
		GuardTTL:     5 * time.Minute,
	}
}

// Engine owns streaming delivery. The transport registers a FrameWriter per
// request before the pipeline runs; the write step drains the finished
// response through it. A request whose stream breaks still carries its full
// answer in state, so single-pass delivery always remains possible.
type Engine struct {
	mu      sync.Mutex
	writers map[string]FrameWriter

	guard  *Guard
	cfg    Config
	logger *log.Logger
}

func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &Engine{
		writers: make(map[string]FrameWriter),
		guard:   NewGuard(cfg.GuardTTL),
		cfg:     cfg,
		logger:  logger,
	}
}

// RegisterWriter binds a client channel to a request id. The transport owns
// the writer's lifetime until the write step takes it over.
func (e *Engine) RegisterWriter(requestID string, w FrameWriter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writers[requestID] = w
}

// ReleaseWriter closes and drops a writer the pipeline never consumed.
func (e *Engine) ReleaseWriter(requestID string) {
	e.mu.Lock()
	w := e.writers[requestID]
	delete(e.writers, requestID)
	e.mu.Unlock()
	if w != nil {
		_ = w.Close()
	}
}

func (e *Engine) takeWriter(requestID string) FrameWriter {
	e.mu.Lock()
	defer e.mu.Unlock()
	w := e.writers[requestID]
	delete(e.writers, requestID)
	return w
}

func (e *Engine) hasWriter(requestID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.writers[requestID]
	return ok
}

// SetupAdapter verifies streaming can serve this request.
func (e *Engine) SetupAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    "stream_setup",
		Mapping: flow.FieldMap{Home: flow.SectionStreaming},
		Run:     e.setup,
	}
}

func (e *Engine) setup(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	if !view.GetBool(flow.SectionStreaming, "stream_requested") {
		return flow.Patch{
			Fields:    map[string]any{"streaming_active": false},
			Decisions: map[string]any{"stream": "disabled"},
		}
	}
	if !e.hasWriter(view.RequestID()) {
		// Never leave a waiting client hanging: downgrade, answer anyway.
		e.logger.Printf("[WARN] stream requested but no writer registered request_id=%s", view.RequestID())
		return flow.Patch{
			Fields: map[string]any{
				"streaming_active":        false,
				"fallback_to_single_pass": true,
				"fallback_cause":          "writer_missing",
			},
			Decisions: map[string]any{"stream": "fallback_single_pass"},
		}
	}
	return flow.Patch{
		Fields:    map[string]any{"streaming_active": true},
		Decisions: map[string]any{"stream": "active"},
	}
}

// WriteAdapter emits the finished response as SSE-sized chunks under
// single-pass protection.
func (e *Engine) WriteAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    "stream_write",
		Mapping: flow.FieldMap{Home: flow.SectionStreaming},
		Run:     e.write,
	}
}

func (e *Engine) write(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	requestID := view.RequestID()

	if !view.GetBool(flow.SectionStreaming, "streaming_active") {
		return flow.Patch{Fields: map[string]any{"stream_skipped": true, "skip_cause": "not_active"}}
	}
	if !e.guard.Acquire(requestID) {
		e.logger.Printf("[STREAM] duplicate emission blocked request_id=%s", requestID)
		return flow.Patch{
			Fields:    map[string]any{"stream_skipped": true, "skip_cause": "already_streamed"},
			Decisions: map[string]any{"stream": "duplicate_blocked"},
		}
	}

	writer := e.takeWriter(requestID)
	if writer == nil {
		return flow.Patch{
			Fields: map[string]any{
				"fallback_to_single_pass": true,
				"fallback_cause":          "writer_missing",
				"cleanup_triggered":       true,
			},
			Decisions: map[string]any{"stream": "fallback_single_pass"},
		}
	}
	defer writer.Close()

	raw, _ := view.Flat("response_text")
	text, _ := raw.(string)
	if text == "" {
		return flow.Patch{
			Fields: map[string]any{
				"fallback_to_single_pass": true,
				"fallback_cause":          "empty_response",
				"cleanup_triggered":       true,
			},
			Decisions: map[string]any{"stream": "fallback_single_pass"},
		}
	}

	chunks := Chunks(text, e.cfg.ChunkSize)
	attempted := len(chunks)
	written := 0
	var writeErr error
	for i, chunk := range chunks {
		wctx, cancel := context.WithTimeout(ctx, e.cfg.WriteTimeout)
		err := writer.WriteChunk(wctx, i, chunk)
		cancel()
		if err != nil {
			writeErr = err
			break
		}
		written++
	}

	fields := map[string]any{
		"chunks_attempted":  attempted,
		"chunks_written":    written,
		"cleanup_triggered": true,
	}

	switch {
	case writeErr == nil:
		dctx, cancel := context.WithTimeout(ctx, e.cfg.WriteTimeout)
		_ = writer.WriteDone(dctx)
		cancel()
		fields["stream_complete"] = true
		e.logger.Printf("[STREAM] complete request_id=%s chunks=%d", requestID, written)
		return flow.Patch{Fields: fields, Decisions: map[string]any{"stream": "complete"}}

	case errors.Is(writeErr, ErrClientGone):
		// Client walked away; stop writing, clean up, no error.
		fields["disconnect"] = true
		fields["stream_complete"] = false
		e.logger.Printf("[STREAM] client disconnected request_id=%s written=%d/%d", requestID, written, attempted)
		return flow.Patch{Fields: fields, Decisions: map[string]any{"stream": "disconnect"}}

	case errors.Is(writeErr, ErrBufferFull):
		fields["buffer_full"] = true
		fields["stream_complete"] = false
		e.logger.Printf("[WARN] stream buffer full request_id=%s written=%d/%d", requestID, written, attempted)
		return flow.Patch{Fields: fields, Decisions: map[string]any{"stream": "buffer_full"}}

	default:
		fields["stream_complete"] = false
		fields["stream_error"] = writeErr.Error()
		e.logger.Printf("[WARN] stream write failed request_id=%s: %v", requestID, writeErr)
		return flow.Patch{Fields: fields, Decisions: map[string]any{"stream": "write_failed"}}
	}
}
