package contract

import (
	"context"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/specification"
)

type UsageRecordRepository interface {
	Create(ctx context.Context, record *entity.UsageRecord) error
	FindByRequestId(ctx context.Context, requestId string) (*entity.UsageRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
