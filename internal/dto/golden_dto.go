package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateGoldenAnswerRequest struct {
	Question    string                `json:"question" validate:"required,max=500"`
	Answer      string                `json:"answer" validate:"required"`
	Topic       string                `json:"topic,omitempty"`
	Citations   []GoldenCitationInput `json:"citations,omitempty" validate:"max=10"`
	EffectiveAt *time.Time            `json:"effective_at,omitempty"`
	Metadata    map[string]any        `json:"metadata,omitempty"`
}

type GoldenCitationInput struct {
	KBDocumentId *uuid.UUID `json:"kb_document_id,omitempty"`
	Label        string     `json:"label" validate:"required,max=200"`
}

type UpdateGoldenAnswerRequest struct {
	Id          uuid.UUID             `json:"id" validate:"required"`
	Question    string                `json:"question,omitempty" validate:"max=500"`
	Answer      string                `json:"answer,omitempty"`
	Topic       string                `json:"topic,omitempty"`
	Citations   []GoldenCitationInput `json:"citations,omitempty" validate:"max=10"`
	EffectiveAt *time.Time            `json:"effective_at,omitempty"`
	Active      *bool                 `json:"active,omitempty"`
}

type GoldenAnswerResponse struct {
	Id          uuid.UUID             `json:"id"`
	Question    string                `json:"question"`
	Answer      string                `json:"answer"`
	Topic       string                `json:"topic,omitempty"`
	Citations   []GoldenCitationInput `json:"citations,omitempty"`
	EffectiveAt time.Time             `json:"effective_at"`
	Active      bool                  `json:"active"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   *time.Time            `json:"updated_at,omitempty"`
}

// VerifyGoldenAnswerRequest re-stamps the verification date after a curator
// confirms the answer is still current.
type VerifyGoldenAnswerRequest struct {
	Id uuid.UUID `json:"id" validate:"required"`
}
