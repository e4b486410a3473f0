package respcache

import (
	"context"
	"log"
	"time"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
)

// Config encapsulates cache adapter parameters
type Config struct {
	CheckTimeout time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration
}

func DefaultConfig() Config {
	return Config{
		CheckTimeout: 150 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		TTL:          6 * time.Hour,
	}
}

// Engine is the fail-open response cache adapter. The cache is an
// optimization only: every failure resolves to a miss with a diagnostic
// flag, never an error the pipeline has to handle.
type Engine struct {
	client Client
	cfg    Config
	logger *log.Logger
}

func NewEngine(client Client, cfg Config, logger *log.Logger) *Engine {
	return &Engine{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// CheckAdapter resolves the conversation fingerprint to hit or miss.
func (e *Engine) CheckAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name: "cache_check",
		Mapping: flow.FieldMap{
			Home:    flow.SectionCache,
			Mirrors: []string{"cache_hit", "response_text"},
		},
		Run: e.check,
	}
}

func (e *Engine) check(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	key := Fingerprint(messages)

	cctx, cancel := context.WithTimeout(ctx, e.cfg.CheckTimeout)
	defer cancel()

	value, found, err := e.client.Get(cctx, key)
	if err != nil {
		e.logger.Printf("[CACHE] check failed, serving miss: %v", err)
		return flow.Patch{
			Fields: map[string]any{
				"cache_hit":           false,
				"fingerprint":         key,
				"cache_error_ignored": true,
				"cache_error":         err.Error(),
			},
			Decisions: map[string]any{"cache_hit": false},
		}
	}

	if !found {
		return flow.Patch{
			Fields: map[string]any{
				"cache_hit":   false,
				"fingerprint": key,
			},
			Decisions: map[string]any{"cache_hit": false},
		}
	}

	e.logger.Printf("[CACHE] hit fingerprint=%s...", shortKey(key))
	return flow.Patch{
		Fields: map[string]any{
			"cache_hit":     true,
			"fingerprint":   key,
			"response_text": value,
		},
		Decisions: map[string]any{"cache_hit": true},
		Stage:     flow.StageAnswering,
	}
}

// WriteAdapter stores a freshly generated response under the fingerprint
// recorded at check time.
func (e *Engine) WriteAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name: "cache_write",
		Mapping: flow.FieldMap{
			Home: flow.SectionCache,
		},
		Run: e.write,
	}
}

func (e *Engine) write(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	if view.GetBool(flow.SectionCache, "cache_hit") {
		return flow.Patch{Decisions: map[string]any{"cache_written": false}}
	}

	response, _ := view.Flat("response_text")
	text, _ := response.(string)
	if text == "" {
		return flow.Patch{Decisions: map[string]any{"cache_written": false}}
	}

	key := view.GetString(flow.SectionCache, "fingerprint")
	if key == "" {
		key = Fingerprint(messages)
	}

	wctx, cancel := context.WithTimeout(ctx, e.cfg.WriteTimeout)
	defer cancel()

	if err := e.client.Set(wctx, key, text, e.cfg.TTL); err != nil {
		e.logger.Printf("[CACHE] write failed, ignoring: %v", err)
		return flow.Patch{
			Fields: map[string]any{
				"cache_write_failed": true,
				"cache_error":        err.Error(),
			},
			Decisions: map[string]any{"cache_written": false},
		}
	}

	return flow.Patch{Decisions: map[string]any{"cache_written": true}}
}

func shortKey(key string) string {
	if len(key) > 20 {
		return key[:20]
	}
	return key
}
