package tools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
)

// Config encapsulates tool execution parameters
type Config struct {
	// CallTimeout bounds each individual source call.
	CallTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{CallTimeout: 4 * time.Second}
}

// Engine runs the tool calls a completion requested. Sources fail
// independently: a round proceeds with whatever succeeded and reports the
// rest, so one slow or broken backend never takes the whole answer down.
type Engine struct {
	handlers map[Kind]Handler
	cfg      Config
	logger   *log.Logger
}

func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultConfig().CallTimeout
	}
	return &Engine{
		handlers: make(map[Kind]Handler),
		cfg:      cfg,
		logger:   logger,
	}
}

func (e *Engine) Register(h Handler) {
	e.handlers[h.Kind()] = h
}

// Definitions lists the registered tools in stable order, ready to offer to
// the model.
func (e *Engine) Definitions() []llm.Tool {
	defs := make([]llm.Tool, 0, len(e.handlers))
	for _, h := range e.handlers {
		defs = append(defs, h.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// ExecuteAdapter runs one round of requested tool calls.
func (e *Engine) ExecuteAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    "tool_execute",
		Mapping: flow.FieldMap{Home: flow.SectionTools},
		Run:     e.execute,
	}
}

func (e *Engine) execute(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	calls := requestedCalls(view)
	if len(calls) == 0 {
		return flow.Patch{
			Fields:    map[string]any{"tool_noop": true},
			Decisions: map[string]any{"tool_noop": true},
		}
	}

	round := view.GetInt(flow.SectionTools, "tool_rounds") + 1
	transcript := transcriptCopy(view)
	transcript = append(transcript, llm.Message{Role: "assistant", Content: requestSummary(calls)})

	var failed []string
	succeeded := 0
	timedOut := false
	for _, call := range calls {
		text, err := e.runCall(ctx, call)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				timedOut = true
			}
			e.logger.Printf("[WARN] tool %s failed: %v", call.Name, err)
			failed = append(failed, call.Name)
			text = fmt.Sprintf("The %s source is unavailable for this request.", call.Name)
		} else {
			succeeded++
		}
		transcript = append(transcript, llm.Message{Role: "tool", Content: text, ToolCallID: call.ID})
	}

	e.logger.Printf("[TOOLS] round=%d requested=%d succeeded=%d failed=%d", round, len(calls), succeeded, len(failed))

	fields := map[string]any{
		"tool_rounds":     round,
		"transcript":      transcript,
		"tool_success":    succeeded > 0,
		"partial_failure": succeeded > 0 && len(failed) > 0,
		"tool_failed":     succeeded == 0,
	}
	if len(failed) > 0 {
		fields["failed_sources"] = failed
	}
	if timedOut {
		fields["timeout"] = true
	}

	return flow.Patch{
		Fields: fields,
		Decisions: map[string]any{
			fmt.Sprintf("tool_round_%d", round): map[string]any{
				"requested": len(calls),
				"succeeded": succeeded,
				"failed":    len(failed),
			},
		},
	}
}

func (e *Engine) runCall(ctx context.Context, call llm.ToolCall) (string, error) {
	handler, ok := e.handlers[Kind(call.Name)]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}
	cctx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()
	return handler.Execute(cctx, call.Arguments)
}

func requestedCalls(view flow.View) []llm.ToolCall {
	raw, ok := view.Get(flow.SectionLLM, "tool_calls")
	if !ok {
		return nil
	}
	calls, _ := raw.([]llm.ToolCall)
	return calls
}

func transcriptCopy(view flow.View) []llm.Message {
	raw, ok := view.Get(flow.SectionTools, "transcript")
	if !ok {
		return nil
	}
	existing, ok := raw.([]llm.Message)
	if !ok {
		return nil
	}
	out := make([]llm.Message, len(existing))
	copy(out, existing)
	return out
}

func requestSummary(calls []llm.ToolCall) string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return "Consulting sources: " + strings.Join(names, ", ")
}
