package main

import (
	"log"
	"os"

	"regassist-be/internal/model"
	"regassist-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},

		// Conversation surface
		&model.QASession{},
		&model.QAMessage{},
		&model.QACitation{},

		// Curated store
		&model.GoldenAnswer{},
		&model.GoldenCitation{},
		&model.GoldenEmbedding{},

		// Knowledge base
		&model.KBDocument{},
		&model.KBDocumentEmbedding{},
		&model.LaborAgreement{},

		// Feedback & trust
		&model.ExpertProfile{},
		&model.FeedbackRecord{},

		// Accounting
		&model.UsageRecord{},

		// Notifications
		&model.NotificationType{},
		&model.Notification{},
	}

	// Migrate strictly
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Generated Columns & Indexes
	// AutoMigrate cannot express the tsvector column or the ANN indexes, so
	// they are applied here, idempotently.
	log.Println("Step 3: Creating Search Column and Indexes...")

	postMigrationSQL := []string{
		// Full-text search column over title + content; hybrid search queries
		// it raw, the model deliberately does not map it.
		`ALTER TABLE kb_documents ADD COLUMN IF NOT EXISTS search_vector tsvector
		 GENERATED ALWAYS AS (to_tsvector('english', coalesce(title, '') || ' ' || coalesce(content, ''))) STORED;`,
		`CREATE INDEX IF NOT EXISTS idx_kb_documents_search_vector ON kb_documents USING GIN (search_vector);`,

		// Cosine ANN indexes for the two vector lookups.
		`CREATE INDEX IF NOT EXISTS idx_golden_embeddings_cosine ON golden_embeddings
		 USING hnsw (embedding_value vector_cosine_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_kb_document_embeddings_cosine ON kb_document_embeddings
		 USING hnsw (embedding_value vector_cosine_ops);`,

		// View: one row per delivered answer with its feedback state, used by
		// reviewers when auditing responses. feedback_records.response_id is
		// the assistant message id serialized as text.
		`CREATE OR REPLACE VIEW reviewable_responses AS
		 SELECT m.id AS response_id, m.qa_session_id, m.content, m.answer_path, m.request_id, m.created_at,
		        f.id AS feedback_id, f.rating, f.status AS feedback_status
		 FROM qa_messages m
		 LEFT JOIN feedback_records f ON f.response_id = m.id::text
		 WHERE m.role = 'assistant' AND m.deleted_at IS NULL;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
