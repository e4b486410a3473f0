package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system", "tool"
	Content string
	// ToolCallID links a "tool" role message back to the call it answers.
	ToolCallID string
}

// Tool describes a function the model may request during a chat turn.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the arguments.
	Parameters map[string]any
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Usage reports token accounting for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

// Completion is the outcome of a successful provider call. When the model
// requests tool use, ToolCalls is non-empty and Content may be empty; the
// caller runs the tools and asks for a follow-up completion.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
	Model     string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	Tools       []Tool // Tools offered to the model for this turn
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithTools(tools []Tool) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the completion
	Chat(ctx context.Context, history []Message, options ...Option) (*Completion, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (*Completion, error)
}

// ProviderError is the classified failure a provider returns. StatusCode
// carries the upstream HTTP status (0 for transport-level failures) and
// Timeout marks deadline expiry, so callers can decide retryability without
// string-matching messages.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Timeout    bool
}

func (e *ProviderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the failure is transient. Timeouts, rate limits
// and server-side errors qualify; authentication and validation failures
// never do.
func (e *ProviderError) Retryable() bool {
	if e.Timeout {
		return true
	}
	if e.StatusCode == 429 {
		return true
	}
	return e.StatusCode >= 500 && e.StatusCode <= 599
}

// AsProviderError unwraps err into a ProviderError when possible.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
