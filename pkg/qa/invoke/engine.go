package invoke

import (
	"context"
	"fmt"
	"log"
	"time"

	"regassist-be/pkg/flow"
	"regassist-be/pkg/llm"
)

// Endpoint names a provider/model pair the pipeline may route a request to.
type Endpoint struct {
	Provider string
	Model    string
}

// Config encapsulates invocation parameters
type Config struct {
	Primary       Endpoint
	Fallback      *Endpoint
	Timeout       time.Duration
	MaxAttempts   int
	MaxToolRounds int
	Temperature   float64
	MaxTokens     int
}

func DefaultConfig() Config {
	return Config{
		Primary:       Endpoint{Provider: "ollama", Model: "llama3.1:8b"},
		Timeout:       60 * time.Second,
		MaxAttempts:   2,
		MaxToolRounds: 2,
		Temperature:   0.2,
		MaxTokens:     1024,
	}
}

// Engine owns provider selection and model invocation. Providers are
// registered by name at bootstrap; the selection step picks an endpoint per
// attempt and the invoke step classifies the outcome into routable fields.
type Engine struct {
	providers map[string]llm.LLMProvider
	tools     []llm.Tool
	cfg       Config
	logger    *log.Logger
}

func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Engine{
		providers: make(map[string]llm.LLMProvider),
		cfg:       cfg,
		logger:    logger,
	}
}

func (e *Engine) RegisterProvider(name string, provider llm.LLMProvider) {
	e.providers[name] = provider
}

// OfferTools sets the tool definitions the model may request. Tools are
// withheld once the round budget is spent so a follow-up completion must
// answer in text.
func (e *Engine) OfferTools(tools []llm.Tool) {
	e.tools = tools
}

// ShouldRetry reports whether the router may re-enter provider selection
// after a failed invocation.
func (e *Engine) ShouldRetry(view flow.View) bool {
	if !view.GetBool(flow.SectionLLM, "retryable") {
		return false
	}
	return view.GetInt(flow.SectionLLM, "llm_attempts") < e.cfg.MaxAttempts
}

// SelectAdapter picks the endpoint for the current attempt.
func (e *Engine) SelectAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name:    "provider_select",
		Mapping: flow.FieldMap{Home: flow.SectionLLM},
		Run:     e.selectEndpoint,
	}
}

func (e *Engine) selectEndpoint(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	attempts := view.GetInt(flow.SectionLLM, "llm_attempts")

	endpoint := e.cfg.Primary
	fallback := false
	if attempts > 0 && e.cfg.Fallback != nil {
		endpoint = *e.cfg.Fallback
		fallback = true
	}

	if _, ok := e.providers[endpoint.Provider]; !ok {
		e.logger.Printf("[WARN] provider %q selected but never registered", endpoint.Provider)
		return flow.Patch{
			Fields: map[string]any{
				"llm_failed":    true,
				"retryable":     false,
				"error_message": fmt.Sprintf("provider %q not registered", endpoint.Provider),
			},
			Decisions: map[string]any{"provider_missing": endpoint.Provider},
		}
	}

	e.logger.Printf("[LLM] selected provider=%s model=%s fallback=%v attempt=%d", endpoint.Provider, endpoint.Model, fallback, attempts+1)
	return flow.Patch{
		Fields: map[string]any{
			"provider":        endpoint.Provider,
			"model":           endpoint.Model,
			"fallback_active": fallback,
		},
		Decisions: map[string]any{
			"provider": endpoint.Provider,
			"model":    endpoint.Model,
		},
	}
}

// InvokeAdapter calls the selected model and classifies the outcome.
func (e *Engine) InvokeAdapter() *flow.Adapter {
	return &flow.Adapter{
		Name: "llm_invoke",
		Mapping: flow.FieldMap{
			Home:    flow.SectionLLM,
			Mirrors: []string{"response_text"},
		},
		Run: e.invoke,
	}
}

func (e *Engine) invoke(ctx context.Context, messages []llm.Message, view flow.View) flow.Patch {
	attempt := view.GetInt(flow.SectionLLM, "llm_attempts") + 1

	providerName := view.GetString(flow.SectionLLM, "provider")
	provider, ok := e.providers[providerName]
	if !ok {
		return e.failure(attempt, 0, fmt.Sprintf("no provider selected (%q)", providerName), false)
	}
	model := view.GetString(flow.SectionLLM, "model")

	opts := []llm.Option{
		llm.WithModel(model),
		llm.WithTemperature(e.cfg.Temperature),
		llm.WithMaxTokens(e.cfg.MaxTokens),
	}
	rounds := view.GetInt(flow.SectionTools, "tool_rounds")
	if len(e.tools) > 0 && rounds < e.cfg.MaxToolRounds {
		opts = append(opts, llm.WithTools(e.tools))
	}

	// Tool rounds extend the conversation: the stored transcript carries the
	// request summary and each source's result into the follow-up call.
	history := messages
	if raw, ok := view.Get(flow.SectionTools, "transcript"); ok {
		if extra, ok := raw.([]llm.Message); ok && len(extra) > 0 {
			combined := make([]llm.Message, 0, len(messages)+len(extra))
			combined = append(combined, messages...)
			combined = append(combined, extra...)
			history = combined
		}
	}

	cctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	e.logger.Printf("[LLM] invoke attempt=%d provider=%s model=%s messages=%d", attempt, providerName, model, len(history))
	completion, err := provider.Chat(cctx, history, opts...)
	if err != nil {
		status := 0
		retryable := false
		message := err.Error()
		if pe, found := llm.AsProviderError(err); found {
			status = pe.StatusCode
			retryable = pe.Retryable()
			message = pe.Message
		}
		e.logger.Printf("[WARN] llm attempt %d failed status=%d retryable=%v: %s", attempt, status, retryable, message)
		return e.failure(attempt, status, message, retryable)
	}

	if len(completion.ToolCalls) > 0 {
		e.logger.Printf("[LLM] model requested %d tool call(s)", len(completion.ToolCalls))
		return flow.Patch{
			Fields: map[string]any{
				"llm_attempts": attempt,
				"needs_tools":  true,
				"tool_calls":   completion.ToolCalls,
				"model_used":   completion.Model,
			},
			Decisions: map[string]any{"llm_outcome": "tool_calls"},
		}
	}

	// A completion with neither content nor tool calls is malformed; treat
	// it like a transient upstream failure so the fallback can take over.
	if completion.Content == "" {
		e.logger.Printf("[WARN] llm attempt %d returned empty completion", attempt)
		return e.failure(attempt, 0, "empty completion", true)
	}

	return flow.Patch{
		Fields: map[string]any{
			"llm_attempts":      attempt,
			"llm_success":       true,
			"needs_tools":       false,
			"response_text":     completion.Content,
			"model_used":        completion.Model,
			"prompt_tokens":     completion.Usage.PromptTokens,
			"completion_tokens": completion.Usage.CompletionTokens,
		},
		Decisions: map[string]any{"llm_outcome": "success"},
		Stage:     flow.StageAnswering,
	}
}

func (e *Engine) failure(attempt int, status int, message string, retryable bool) flow.Patch {
	return flow.Patch{
		Fields: map[string]any{
			"llm_attempts":  attempt,
			"llm_failed":    true,
			"needs_tools":   false,
			"status_code":   status,
			"error_message": message,
			"retryable":     retryable,
		},
		Decisions: map[string]any{"llm_outcome": "failure"},
	}
}
