package contract

import (
	"context"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ExpertProfileRepository interface {
	Create(ctx context.Context, profile *entity.ExpertProfile) error
	Update(ctx context.Context, profile *entity.ExpertProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ExpertProfile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ExpertProfile, error)
	FindByEmail(ctx context.Context, email string) (*entity.ExpertProfile, error)
	IncrementReviewCount(ctx context.Context, id uuid.UUID) error
}
