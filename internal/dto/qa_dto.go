package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateQASessionRequest struct {
	Anonymous bool `json:"anonymous"`
}

type CreateQASessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetQASessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetQAHistoryResponse struct {
	Id         uuid.UUID       `json:"id"`
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	AnswerPath string          `json:"answer_path,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Citations  []QACitationDTO `json:"citations,omitempty"`
}

type QACitationDTO struct {
	KBDocumentId uuid.UUID `json:"kb_document_id,omitempty"`
	Label        string    `json:"label"`
}

type AskRequest struct {
	QASessionId uuid.UUID `json:"qa_session_id" validate:"required"`
	Question    string    `json:"question" validate:"required,max=2000"`
	Stream      bool      `json:"stream"`

	// SkipCurated requests a fresh model answer even when a curated match
	// exists, e.g. when the user re-asks after a curated answer missed.
	SkipCurated bool `json:"skip_curated"`
}

type AskResponse struct {
	QASessionId uuid.UUID       `json:"qa_session_id"`
	RequestId   string          `json:"request_id"`
	ResponseId  *uuid.UUID      `json:"response_id,omitempty"`
	Answer      string          `json:"answer"`
	AnswerPath  string          `json:"answer_path,omitempty"`
	Citations   []QACitationDTO `json:"citations,omitempty"`
	FeedbackUI  string          `json:"feedback_ui,omitempty"`
	Streamed    bool            `json:"streamed"`
	Failed      bool            `json:"failed,omitempty"`
	FailedCause string          `json:"failed_cause,omitempty"`
}

type DeleteQASessionRequest struct {
	QASessionId uuid.UUID `json:"qa_session_id"`
}

// PublishUsageMessage is the watermill payload delivery emits; the consumer
// service turns it into a usage_records row.
type PublishUsageMessage struct {
	RequestId   string         `json:"request_id"`
	QASessionId *uuid.UUID     `json:"qa_session_id,omitempty"`
	Stage       string         `json:"stage"`
	Flags       UsageFlags     `json:"flags"`
	Provider    string         `json:"provider,omitempty"`
	Model       string         `json:"model,omitempty"`
	Tokens      UsageTokens    `json:"tokens"`
	ToolRounds  int            `json:"tool_rounds"`
	DurationMs  int64          `json:"duration_ms"`
	Decisions   map[string]any `json:"decisions,omitempty"`
	Metrics     map[string]any `json:"metrics,omitempty"`
	NodeHistory []string       `json:"node_history,omitempty"`
}

type UsageFlags struct {
	GoldenServed bool `json:"golden_served"`
	CacheHit     bool `json:"cache_hit"`
	Streamed     bool `json:"streamed"`
}

type UsageTokens struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}
