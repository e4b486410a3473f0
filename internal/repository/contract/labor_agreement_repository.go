package contract

import (
	"context"
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type LaborAgreementRepository interface {
	Create(ctx context.Context, agreement *entity.LaborAgreement) error
	Update(ctx context.Context, agreement *entity.LaborAgreement) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LaborAgreement, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LaborAgreement, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindApplicable returns agreements valid at the given time whose
	// sector or region matches; empty filters match everything.
	FindApplicable(ctx context.Context, sector, region string, at time.Time, limit int) ([]*entity.LaborAgreement, error)
}
