package main

import (
	"log"

	"regassist-be/internal/config"
	"regassist-be/pkg/database"
	"regassist-be/pkg/embedding"
	"regassist-be/pkg/embedding/jina"
)

// Seeds the baseline dataset: staff accounts, notification registry, the
// regulation knowledge base with embeddings, curated golden answers, labor
// agreements and expert profiles. Safe to run repeatedly; every seeder keys
// on a natural identifier.
func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Embedding Provider (same selection as the server container)
	var provider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		provider = jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	log.Println("Starting RegAssist Seeder...")

	SeedStaffUsers(db)
	SeedNotificationTypes(db)
	SeedExpertProfiles(db)
	SeedLaborAgreements(db)

	docsBySource := SeedKnowledgeBase(db, provider)
	SeedGoldenAnswers(db, provider, docsBySource)

	log.Println("✅ Success: Seeding completed.")
}
