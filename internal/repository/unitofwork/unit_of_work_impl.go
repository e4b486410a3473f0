package unitofwork

import (
	"context"
	"fmt"

	"regassist-be/internal/repository/contract"
	"regassist-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // The active transaction (or just db if no tx)
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) GoldenAnswerRepository() contract.GoldenAnswerRepository {
	return implementation.NewGoldenAnswerRepository(u.getDB())
}

func (u *UnitOfWorkImpl) GoldenEmbeddingRepository() contract.GoldenEmbeddingRepository {
	return implementation.NewGoldenEmbeddingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) GoldenCitationRepository() contract.GoldenCitationRepository {
	return implementation.NewGoldenCitationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) KBDocumentRepository() contract.KBDocumentRepository {
	return implementation.NewKBDocumentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) KBDocumentEmbeddingRepository() contract.KBDocumentEmbeddingRepository {
	return implementation.NewKBDocumentEmbeddingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LaborAgreementRepository() contract.LaborAgreementRepository {
	return implementation.NewLaborAgreementRepository(u.getDB())
}

func (u *UnitOfWorkImpl) QASessionRepository() contract.QASessionRepository {
	return implementation.NewQASessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) QAMessageRepository() contract.QAMessageRepository {
	return implementation.NewQAMessageRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ExpertProfileRepository() contract.ExpertProfileRepository {
	return implementation.NewExpertProfileRepository(u.getDB())
}

func (u *UnitOfWorkImpl) FeedbackRecordRepository() contract.FeedbackRecordRepository {
	return implementation.NewFeedbackRecordRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UsageRecordRepository() contract.UsageRecordRepository {
	return implementation.NewUsageRecordRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}
