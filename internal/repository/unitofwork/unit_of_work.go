package unitofwork

import (
	"context"

	"regassist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	GoldenAnswerRepository() contract.GoldenAnswerRepository
	GoldenEmbeddingRepository() contract.GoldenEmbeddingRepository
	GoldenCitationRepository() contract.GoldenCitationRepository

	KBDocumentRepository() contract.KBDocumentRepository
	KBDocumentEmbeddingRepository() contract.KBDocumentEmbeddingRepository
	LaborAgreementRepository() contract.LaborAgreementRepository

	QASessionRepository() contract.QASessionRepository
	QAMessageRepository() contract.QAMessageRepository

	ExpertProfileRepository() contract.ExpertProfileRepository
	FeedbackRecordRepository() contract.FeedbackRecordRepository
	UsageRecordRepository() contract.UsageRecordRepository

	UserRepository() contract.UserRepository
}
