package entity

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is the per-request audit row written after delivery: which
// path answered, what it cost, and the full decision log.
type UsageRecord struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestId   string
	QASessionId *uuid.UUID `gorm:"type:uuid"`

	Stage        string
	GoldenServed bool
	CacheHit     bool
	Streamed     bool

	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	ToolRounds       int

	DurationMs int64

	// Decisions, Metrics, and NodeHistory are the audit trail copied out
	// of the request state verbatim.
	Decisions   map[string]any `gorm:"-"`
	Metrics     map[string]any `gorm:"-"`
	NodeHistory []string       `gorm:"-"`

	CreatedAt time.Time
}
