package flow

import (
	"context"
	"fmt"
	"log"
	"time"

	"regassist-be/pkg/llm"
)

// Orchestrator is the contract every step implements: read-only access to
// the conversation and the accumulated state, a patch out. Orchestrators
// never touch the state directly and never return an error; failures are
// expressed as fields inside the patch so downstream steps can route on
// them.
type Orchestrator func(ctx context.Context, messages []llm.Message, view View) Patch

// Adapter binds an orchestrator to its place in the pipeline: a step name,
// a field mapping that decides where patch fields land, and the shared
// bookkeeping (timing, history, panic containment) that individual
// orchestrators must not reimplement.
type Adapter struct {
	Name    string
	Mapping FieldMap
	Run     Orchestrator
}

// Execute invokes the orchestrator and folds its patch into the state.
// The timer covers the orchestrator call only, not patch application, so
// step metrics reflect the work of the step itself.
func (a *Adapter) Execute(ctx context.Context, st *State, messages []llm.Message, logger *log.Logger) {
	logger.Printf("[STEP] %s: enter request_id=%s stage=%s", a.Name, st.RequestID(), st.Stage())

	start := time.Now()
	patch := a.invoke(ctx, messages, st)
	elapsed := time.Since(start)

	st.apply(a.Mapping, patch)
	st.appendNode(a.Name)
	st.recordMetric(a.Name+"_ms", elapsed.Milliseconds())

	logger.Printf("[STEP] %s: exit elapsed=%s stage=%s complete=%v", a.Name, elapsed, st.Stage(), st.Completed())
}

// invoke shields the pipeline from a panicking orchestrator. The step is
// still recorded in history; the panic becomes a routable field plus an
// audit entry instead of taking the whole request down.
func (a *Adapter) invoke(ctx context.Context, messages []llm.Message, view View) (p Patch) {
	defer func() {
		if r := recover(); r != nil {
			p = Patch{
				Fields: map[string]any{
					"step_panic":   fmt.Sprint(r),
					"step_failed":  true,
					"failed_cause": "panic",
				},
				Decisions: map[string]any{a.Name + "_panicked": true},
			}
		}
	}()
	return a.Run(ctx, messages, view)
}
