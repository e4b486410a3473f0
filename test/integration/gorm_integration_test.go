package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"regassist-be/internal/entity"
	"regassist-be/internal/repository/contract"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.QASessionRepository())
	assert.NotNil(t, uow.GoldenAnswerRepository())
	assert.NotNil(t, uow.KBDocumentRepository())
	assert.NotNil(t, uow.FeedbackRecordRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Staff user count: %d", count)
	})

	t.Run("Check Usage Record Repository", func(t *testing.T) {
		count, err := uow.UsageRecordRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Usage record count: %d", count)
	})

	t.Run("Check Transactional KB Ingest", func(t *testing.T) {
		ctx := context.Background()

		doc := &entity.KBDocument{
			Id:          uuid.New(),
			Title:       "Integration Test Article",
			Content:     "Employees are entitled to a rest break after six hours of work.",
			Source:      "itest-" + uuid.New().String(),
			Category:    "working_time",
			EffectiveAt: time.Now(),
			CreatedAt:   time.Now(),
		}

		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		err = uow.KBDocumentRepository().Create(ctx, doc)
		assert.NoError(t, err)

		// Two zero-vector chunks; the column only cares about dimensions.
		chunks := []*contract.KBChunk{
			{
				Id:           uuid.New(),
				KBDocumentId: doc.Id,
				Chunk:        doc.Content,
				ChunkIndex:   0,
				Embedding:    pgvector.NewVector(make([]float32, 768)),
			},
			{
				Id:           uuid.New(),
				KBDocumentId: doc.Id,
				Chunk:        "Rest breaks count as working time in shift schedules.",
				ChunkIndex:   1,
				Embedding:    pgvector.NewVector(make([]float32, 768)),
			},
		}
		err = uow.KBDocumentEmbeddingRepository().CreateBulk(ctx, chunks)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		count, err := uow.KBDocumentEmbeddingRepository().CountByDocumentId(ctx, doc.Id)
		assert.NoError(t, err)
		assert.EqualValues(t, 2, count)

		// Cleanup
		assert.NoError(t, uow.KBDocumentEmbeddingRepository().DeleteByDocumentId(ctx, doc.Id))
		assert.NoError(t, uow.KBDocumentRepository().Delete(ctx, doc.Id))

		t.Log("Successfully ingested KB document with chunk embeddings in transaction")
	})
}
