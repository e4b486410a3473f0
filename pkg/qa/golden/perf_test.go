package golden

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"regassist-be/internal/repository/contract"
	"regassist-be/pkg/flow"
)

func p95(samples []time.Duration) time.Duration {
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return samples[len(samples)*95/100]
}

func TestLookupOverheadP95(t *testing.T) {
	uow := defaultUoW()
	uow.embeddings.matches = []*contract.ScoredGoldenAnswer{scored(0.97, "30 calendar days.", "vacation")}
	engine := newTestEngine(uow, &fakeEmbedder{values: []float32{0.1, 0.2}})
	messages := ask("How many vacation days per year?")

	samples := make([]time.Duration, 0, 100)
	for i := 0; i < 100; i++ {
		st := flow.NewState(fmt.Sprintf("req-%d", i), "sess-1")
		start := time.Now()
		engine.LookupAdapter().Execute(context.Background(), st, messages, testLogger())
		samples = append(samples, time.Since(start))
	}

	if got := p95(samples); got > 40*time.Millisecond {
		t.Errorf("golden lookup p95 = %s, budget 40ms", got)
	}
}
