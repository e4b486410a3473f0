package contract

import (
	"context"

	"regassist-be/internal/entity"

	"github.com/google/uuid"
)

type GoldenCitationRepository interface {
	Create(ctx context.Context, citation *entity.GoldenCitation) error
	CreateBulk(ctx context.Context, citations []*entity.GoldenCitation) error
	FindAllByAnswerId(ctx context.Context, answerId uuid.UUID) ([]*entity.GoldenCitation, error)
	DeleteByAnswerId(ctx context.Context, answerId uuid.UUID) error
}
