package flow

import (
	"context"
	"fmt"
	"log"

	"regassist-be/pkg/llm"
)

// RouteFunc selects the next step after current, or "" to halt. Routing
// reads the state view only; it never mutates.
type RouteFunc func(current string, view View) string

// defaultMaxSteps bounds a single request. The longest legitimate path
// (tool loop included) stays well under this; hitting it means a routing
// cycle.
const defaultMaxSteps = 32

// Runner drives one request through registered steps until a step marks the
// state complete, the route yields no successor, or the step budget runs
// out.
type Runner struct {
	steps    map[string]*Adapter
	route    RouteFunc
	start    string
	maxSteps int
	logger   *log.Logger
}

func NewRunner(start string, route RouteFunc, logger *log.Logger) *Runner {
	return &Runner{
		steps:    make(map[string]*Adapter),
		route:    route,
		start:    start,
		maxSteps: defaultMaxSteps,
		logger:   logger,
	}
}

// Register adds a step. Later registration under the same name replaces the
// earlier one, which tests use to swap orchestrators.
func (r *Runner) Register(a *Adapter) {
	r.steps[a.Name] = a
}

func (r *Runner) SetMaxSteps(n int) {
	if n > 0 {
		r.maxSteps = n
	}
}

// Execute runs the pipeline over st. Cancellation is honored between steps;
// in-flight orchestrators observe ctx themselves.
func (r *Runner) Execute(ctx context.Context, st *State, messages []llm.Message) error {
	current := r.start
	for executed := 0; ; executed++ {
		if executed >= r.maxSteps {
			return fmt.Errorf("step budget exhausted after %d steps at %q", r.maxSteps, current)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before %q: %w", current, err)
		}

		adapter, ok := r.steps[current]
		if !ok {
			return fmt.Errorf("route to unknown step %q", current)
		}
		adapter.Execute(ctx, st, messages, r.logger)

		if st.Completed() {
			r.logger.Printf("[PIPELINE] complete request_id=%s steps=%d stage=%s", st.RequestID(), executed+1, st.Stage())
			return nil
		}

		next := r.route(current, st)
		if next == "" {
			r.logger.Printf("[PIPELINE] halted request_id=%s after=%s steps=%d", st.RequestID(), current, executed+1)
			return nil
		}
		current = next
	}
}
