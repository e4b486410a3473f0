package flow

import (
	"time"
)

// Section identifies the nested state map owned by one subsystem.
type Section string

const (
	SectionGolden    Section = "golden"
	SectionCache     Section = "cache"
	SectionLLM       Section = "llm"
	SectionTools     Section = "tools"
	SectionStreaming Section = "streaming"
	SectionFeedback  Section = "feedback"
)

// State is the canonical per-request record threaded through every step.
// It is created once per request, mutated only by adapters applying patches,
// and discarded after delivery (and any feedback pass) completes.
//
// Invariants:
//   - node history is append-only; order equals execution order
//   - section maps are never replaced wholesale, only deep-merged
//   - the decision log only accumulates, forming the audit trail
type State struct {
	requestID string
	sessionID string
	stage     string
	complete  bool

	history   []string
	metrics   map[string]any
	sections  map[Section]map[string]any
	decisions map[string]any

	// flatIndex records which section owns a canonical key so legacy flat
	// reads resolve without a second write location.
	flatIndex map[string]Section

	startedAt time.Time
}

// NewState creates the state container for a single request.
func NewState(requestID, sessionID string) *State {
	return &State{
		requestID: requestID,
		sessionID: sessionID,
		stage:     StageReceived,
		metrics:   make(map[string]any),
		sections:  make(map[Section]map[string]any),
		decisions: make(map[string]any),
		flatIndex: make(map[string]Section),
		startedAt: time.Now(),
	}
}

// Processing stages recorded in the scalar control field.
const (
	StageReceived  = "received"
	StageRouting   = "routing"
	StageAnswering = "answering"
	StageDelivery  = "delivery"
	StageFeedback  = "feedback"
	StageDone      = "done"
)

// View is the read-only snapshot handed to orchestrators. Orchestrators read
// but never mutate request state; all writes travel back as patches.
type View interface {
	RequestID() string
	SessionID() string
	Stage() string
	Completed() bool
	History() []string
	StartedAt() time.Time

	Get(sec Section, key string) (any, bool)
	GetString(sec Section, key string) string
	GetBool(sec Section, key string) bool
	GetFloat(sec Section, key string) float64
	GetInt(sec Section, key string) int
	Decision(key string) (any, bool)
	DecisionBool(key string) bool
	Metric(key string) (any, bool)

	// Flat resolves a canonical key without naming its section. It exists for
	// consumers that predate the sectioned layout; the value is read straight
	// from the owning section, so there is no second copy to drift.
	Flat(key string) (any, bool)
}

var _ View = (*State)(nil)

func (s *State) RequestID() string    { return s.requestID }
func (s *State) SessionID() string    { return s.sessionID }
func (s *State) Stage() string        { return s.stage }
func (s *State) Completed() bool      { return s.complete }
func (s *State) StartedAt() time.Time { return s.startedAt }

// History returns a copy of the visited node names in execution order.
func (s *State) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

func (s *State) Get(sec Section, key string) (any, bool) {
	m, ok := s.sections[sec]
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

func (s *State) GetString(sec Section, key string) string {
	if v, ok := s.Get(sec, key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

func (s *State) GetBool(sec Section, key string) bool {
	if v, ok := s.Get(sec, key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func (s *State) GetFloat(sec Section, key string) float64 {
	if v, ok := s.Get(sec, key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		}
	}
	return 0
}

func (s *State) GetInt(sec Section, key string) int {
	if v, ok := s.Get(sec, key); ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

func (s *State) Decision(key string) (any, bool) {
	v, ok := s.decisions[key]
	return v, ok
}

func (s *State) DecisionBool(key string) bool {
	if v, ok := s.decisions[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func (s *State) Metric(key string) (any, bool) {
	v, ok := s.metrics[key]
	return v, ok
}

func (s *State) Flat(key string) (any, bool) {
	sec, ok := s.flatIndex[key]
	if !ok {
		return nil, false
	}
	return s.Get(sec, key)
}

// Decisions returns a deep copy of the accumulated decision log.
func (s *State) Decisions() map[string]any {
	out := make(map[string]any, len(s.decisions))
	deepMerge(out, s.decisions)
	return out
}

// Metrics returns a copy of the metrics map.
func (s *State) Metrics() map[string]any {
	out := make(map[string]any, len(s.metrics))
	for k, v := range s.metrics {
		out[k] = v
	}
	return out
}

// SectionCopy returns a deep copy of one section map (empty map when unset).
func (s *State) SectionCopy(sec Section) map[string]any {
	out := make(map[string]any)
	if m, ok := s.sections[sec]; ok {
		deepMerge(out, m)
	}
	return out
}

func (s *State) appendNode(name string) {
	s.history = append(s.history, name)
}

func (s *State) section(sec Section) map[string]any {
	m, ok := s.sections[sec]
	if !ok {
		m = make(map[string]any)
		s.sections[sec] = m
	}
	return m
}

func (s *State) recordMetric(key string, value any) {
	s.metrics[key] = value
}

// deepMerge unions src into dst. Nested maps merge key-by-key; leaf conflicts
// are replaced by the src value. Nested source maps are copied, never aliased.
func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				deepMerge(dv, sv)
				continue
			}
			cp := make(map[string]any, len(sv))
			deepMerge(cp, sv)
			dst[k] = cp
			continue
		}
		dst[k] = v
	}
}
