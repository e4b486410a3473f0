package contract

import (
	"context"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FeedbackRecordRepository interface {
	Create(ctx context.Context, record *entity.FeedbackRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FeedbackRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FeedbackRecord, error)
	FindAllByResponseId(ctx context.Context, responseId string) ([]*entity.FeedbackRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
