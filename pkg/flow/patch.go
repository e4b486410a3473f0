package flow

// Patch is the typed result an orchestrator returns. Orchestrators convert
// their own failures into patch fields; a raw error never crosses the step
// boundary, which keeps routing decisions explicit and testable.
type Patch struct {
	// Fields are plain result keys. The adapter routes them into the step's
	// home section, applying the mapping table's renames, and registers
	// mirrored keys for flat reads.
	Fields map[string]any

	// Extra deep-merges into arbitrary sections (key union, leaf replace).
	Extra map[Section]map[string]any

	// Decisions deep-merges into the global decision log.
	Decisions map[string]any

	// Stage, when non-empty, advances the processing stage control field.
	Stage string

	// Complete, when non-nil, sets the completion flag.
	Complete *bool
}

// Complete and incomplete markers for Patch.Complete.
var (
	markDone    = true
	markPending = false
)

// Done returns a pointer suitable for Patch.Complete.
func Done() *bool { return &markDone }

// NotDone returns a pointer suitable for Patch.Complete.
func NotDone() *bool { return &markPending }

// FieldMap tells the adapter where a step's plain result keys live and which
// of them legacy consumers may read flat.
type FieldMap struct {
	// Home is the section plain fields land in.
	Home Section

	// Renames maps a patch key to its canonical key. Unlisted keys keep
	// their name.
	Renames map[string]string

	// Mirrors lists canonical keys resolvable through View.Flat. The value
	// stays in the section; Flat is a read-time alias, not a second copy.
	Mirrors []string
}

func (fm FieldMap) canonical(key string) string {
	if fm.Renames != nil {
		if to, ok := fm.Renames[key]; ok {
			return to
		}
	}
	return key
}

// apply folds a patch into the state under the adapter's mapping table.
func (s *State) apply(fm FieldMap, p Patch) {
	if len(p.Fields) > 0 {
		home := s.section(fm.Home)
		staged := make(map[string]any, len(p.Fields))
		for k, v := range p.Fields {
			staged[fm.canonical(k)] = v
		}
		deepMerge(home, staged)
	}
	for _, key := range fm.Mirrors {
		if _, ok := s.section(fm.Home)[key]; ok {
			s.flatIndex[key] = fm.Home
		}
	}
	for sec, m := range p.Extra {
		if len(m) == 0 {
			continue
		}
		deepMerge(s.section(sec), m)
	}
	if len(p.Decisions) > 0 {
		deepMerge(s.decisions, p.Decisions)
	}
	if p.Stage != "" {
		s.stage = p.Stage
	}
	if p.Complete != nil {
		s.complete = *p.Complete
	}
}
