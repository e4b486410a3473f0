package contract

import (
	"context"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GoldenAnswerRepository interface {
	Create(ctx context.Context, answer *entity.GoldenAnswer) error
	Update(ctx context.Context, answer *entity.GoldenAnswer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GoldenAnswer, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GoldenAnswer, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// CountActive is the cheap gate check for an empty answer store.
	CountActive(ctx context.Context) (int64, error)
}
