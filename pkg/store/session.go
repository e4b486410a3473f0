package store

import "time"

// Session is the in-memory runtime snapshot of a QA session. It saves the
// hot path a DB roundtrip on every question; the database row stays the
// source of truth.
type Session struct {
	ID        string `json:"id"` // QASessionID
	ClientKey string `json:"client_key"`
	Anonymous bool   `json:"anonymous"`
	Title     string `json:"title"`

	// TurnCount counts answered questions in this session.
	TurnCount int `json:"turn_count"`

	// Last interaction metadata, used by delivery diagnostics.
	LastRequestID  string    `json:"last_request_id"`
	LastAnswerPath string    `json:"last_answer_path"`
	LastActiveAt   time.Time `json:"last_active_at"`
}
