package tools

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
)

func p95(samples []time.Duration) time.Duration {
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return samples[len(samples)*95/100]
}

func TestExecuteOverheadP95(t *testing.T) {
	engine := NewEngine(DefaultConfig(), testLogger())
	engine.Register(&stubHandler{kind: KindKBSearch, text: "passage"})
	engine.Register(&stubHandler{kind: KindAgreementLookup, text: "agreement"})

	samples := make([]time.Duration, 0, 100)
	for i := 0; i < 100; i++ {
		st := flow.NewState(fmt.Sprintf("req-%d", i), "sess-1")
		seed(st, flow.SectionLLM, requested(
			llm.ToolCall{ID: "call_0", Name: "kb_search", Arguments: map[string]any{"query": "overtime"}},
			llm.ToolCall{ID: "call_1", Name: "agreement_lookup", Arguments: map[string]any{"sector": "metal"}},
		))
		start := time.Now()
		engine.ExecuteAdapter().Execute(context.Background(), st, nil, testLogger())
		samples = append(samples, time.Since(start))
	}

	if got := p95(samples); got > 200*time.Millisecond {
		t.Errorf("tool execution p95 = %s, budget 200ms", got)
	}
}
