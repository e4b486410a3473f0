package contract

import (
	"context"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type QAMessageRepository interface {
	Create(ctx context.Context, message *entity.QAMessage) error
	Update(ctx context.Context, message *entity.QAMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByQASessionId(ctx context.Context, sessionId uuid.UUID) error
	CreateCitations(ctx context.Context, citations []*entity.QACitation) error
	FindCitationsByMessageIds(ctx context.Context, messageIds []uuid.UUID) ([]*entity.QACitation, error)
	FindByRequestId(ctx context.Context, requestId string) (*entity.QAMessage, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QAMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QAMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
