package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitFeedbackRequest struct {
	ResponseId string     `json:"response_id" validate:"required"`
	Route      string     `json:"route,omitempty"`
	ExpertId   *uuid.UUID `json:"expert_id,omitempty"`
	Rating     int        `json:"rating" validate:"min=0,max=5"`
	Comment    string     `json:"comment,omitempty" validate:"max=2000"`
	Anonymous  bool       `json:"anonymous"`
}

type SubmitFeedbackResponse struct {
	Accepted bool       `json:"accepted"`
	RecordId *uuid.UUID `json:"record_id,omitempty"`
	Route    string     `json:"route,omitempty"`

	// Reason and TrustScore are set when the expert trust gate rejects.
	Reason     string   `json:"reason,omitempty"`
	TrustScore *float64 `json:"trust_score,omitempty"`
}

// FeedbackOptionsResponse tells the client which feedback form to render
// for a delivered answer.
type FeedbackOptionsResponse struct {
	ResponseId string `json:"response_id"`
	UIMode     string `json:"ui_mode"`
	Cause      string `json:"cause,omitempty"`
}

type ListFeedbackResponse struct {
	Id         uuid.UUID  `json:"id"`
	ResponseId string     `json:"response_id"`
	Route      string     `json:"route"`
	Status     string     `json:"status"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment,omitempty"`
	ExpertId   *uuid.UUID `json:"expert_id,omitempty"`
	TrustScore *float64   `json:"trust_score,omitempty"`
	Anonymous  bool       `json:"anonymous"`
	CreatedAt  time.Time  `json:"created_at"`
}
