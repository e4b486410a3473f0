package flow

import (
	"context"
	"io"
	"log"
	"reflect"
	"testing"

	"regassist-be/pkg/llm"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func noteStep(name string, sec Section) *Adapter {
	return &Adapter{
		Name:    name,
		Mapping: FieldMap{Home: sec},
		Run: func(ctx context.Context, msgs []llm.Message, view View) Patch {
			return Patch{Fields: map[string]any{"ran": true}}
		},
	}
}

func linearRoute(order []string) RouteFunc {
	return func(current string, view View) string {
		for i, name := range order {
			if name == current && i+1 < len(order) {
				return order[i+1]
			}
		}
		return ""
	}
}

func TestRunnerHistoryMatchesExecutionOrder(t *testing.T) {
	order := []string{"gate", "lookup", "serve"}
	r := NewRunner("gate", linearRoute(order), testLogger())
	for _, name := range order {
		r.Register(noteStep(name, SectionGolden))
	}

	st := NewState("req-1", "")
	if err := r.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !reflect.DeepEqual(st.History(), order) {
		t.Errorf("history = %v, want %v", st.History(), order)
	}
}

func TestRunnerStopsWhenStepMarksComplete(t *testing.T) {
	r := NewRunner("first", linearRoute([]string{"first", "second"}), testLogger())
	r.Register(&Adapter{
		Name:    "first",
		Mapping: FieldMap{Home: SectionGolden},
		Run: func(ctx context.Context, msgs []llm.Message, view View) Patch {
			return Patch{Stage: StageDone, Complete: Done()}
		},
	})
	r.Register(noteStep("second", SectionGolden))

	st := NewState("req-2", "")
	if err := r.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := st.History(); len(got) != 1 || got[0] != "first" {
		t.Errorf("completed pipeline kept routing: history = %v", got)
	}
}

func TestRunnerContainsPanickingStep(t *testing.T) {
	routed := ""
	r := NewRunner("boom", func(current string, view View) string {
		if current == "boom" {
			// Routing can see the failure fields the adapter synthesized.
			if view.GetBool(SectionLLM, "step_failed") {
				routed = "recover"
				return "recover"
			}
		}
		return ""
	}, testLogger())

	r.Register(&Adapter{
		Name:    "boom",
		Mapping: FieldMap{Home: SectionLLM},
		Run: func(ctx context.Context, msgs []llm.Message, view View) Patch {
			panic("nil provider")
		},
	})
	r.Register(noteStep("recover", SectionLLM))

	st := NewState("req-3", "")
	if err := r.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if routed != "recover" {
		t.Error("router never saw the synthesized failure patch")
	}
	if got := st.GetString(SectionLLM, "step_panic"); got != "nil provider" {
		t.Errorf("step_panic = %q", got)
	}
	if !st.DecisionBool("boom_panicked") {
		t.Error("panic missing from decision log")
	}
	if got := st.History(); len(got) != 2 || got[0] != "boom" {
		t.Errorf("history = %v, want [boom recover]", got)
	}
}

func TestRunnerStepBudget(t *testing.T) {
	r := NewRunner("loop", func(current string, view View) string {
		return "loop"
	}, testLogger())
	r.Register(noteStep("loop", SectionLLM))
	r.SetMaxSteps(5)

	st := NewState("req-4", "")
	err := r.Execute(context.Background(), st, nil)
	if err == nil {
		t.Fatal("cyclic route should exhaust the step budget")
	}
	if got := len(st.History()); got != 5 {
		t.Errorf("executed %d steps before budget error, want 5", got)
	}
}

func TestRunnerUnknownStep(t *testing.T) {
	r := NewRunner("missing", linearRoute(nil), testLogger())
	st := NewState("req-5", "")
	if err := r.Execute(context.Background(), st, nil); err == nil {
		t.Fatal("expected error for unregistered step")
	}
}

func TestRunnerHonorsCancellationBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := NewRunner("first", linearRoute([]string{"first", "second"}), testLogger())
	r.Register(&Adapter{
		Name:    "first",
		Mapping: FieldMap{Home: SectionStreaming},
		Run: func(ctx context.Context, msgs []llm.Message, view View) Patch {
			cancel()
			return Patch{}
		},
	})
	r.Register(noteStep("second", SectionStreaming))

	st := NewState("req-6", "")
	err := r.Execute(ctx, st, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if got := st.History(); len(got) != 1 {
		t.Errorf("ran %v after cancellation", got)
	}
}

func TestRunnerRecordsStepDuration(t *testing.T) {
	r := NewRunner("timed", linearRoute(nil), testLogger())
	r.Register(noteStep("timed", SectionGolden))

	st := NewState("req-7", "")
	if err := r.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, ok := st.Metric("timed_ms"); !ok {
		t.Error("step duration metric missing")
	}
}
