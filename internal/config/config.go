package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	QA       QAConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	HuggingFace  string
	UsageTopic   string // usage-recording topic name
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string // e.g. "llama3.1:8b", "qwen2.5"
	FallbackProvider  string // empty disables the fallback endpoint
	FallbackModel     string
}

// QAConfig carries the answering-pipeline knobs. Values stay primitive here;
// the container translates them into the per-engine configs.
type QAConfig struct {
	GoldenServeThreshold    float64
	GoldenConsiderThreshold float64
	GoldenMaxQuestionLen    int
	CacheTTLMinutes         int
	LLMTimeoutSeconds       int
	LLMMaxAttempts          int
	MaxToolRounds           int
	Temperature             float64
	MaxTokens               int
	StreamChunkSize         int
	HistoryLimit            int
	FeedbackEnabled         bool
	AnonymousFeedback       string // "full", "simplified" or "excluded"
	TrustThreshold          float64
	RetrievalTopK           int
	RetrievalMinScore       float64
	RecencyHalfLifeDays     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "RegAssist"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			UsageTopic:   getEnv("PUBLISH_USAGE_TOPIC_NAME", "PUBLISH_USAGE"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3.1:8b"),
			FallbackProvider:  getEnv("LLM_FALLBACK_PROVIDER", ""),
			FallbackModel:     getEnv("LLM_FALLBACK_MODEL", ""),
		},
		QA: QAConfig{
			GoldenServeThreshold:    getEnvAsFloat("GOLDEN_SERVE_THRESHOLD", 0.95),
			GoldenConsiderThreshold: getEnvAsFloat("GOLDEN_CONSIDER_THRESHOLD", 0.70),
			GoldenMaxQuestionLen:    getEnvAsInt("GOLDEN_MAX_QUESTION_LEN", 500),
			CacheTTLMinutes:         getEnvAsInt("RESPONSE_CACHE_TTL_MINUTES", 360),
			LLMTimeoutSeconds:       getEnvAsInt("LLM_TIMEOUT_SECONDS", 60),
			LLMMaxAttempts:          getEnvAsInt("LLM_MAX_ATTEMPTS", 2),
			MaxToolRounds:           getEnvAsInt("LLM_MAX_TOOL_ROUNDS", 2),
			Temperature:             getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			MaxTokens:               getEnvAsInt("LLM_MAX_TOKENS", 1024),
			StreamChunkSize:         getEnvAsInt("STREAM_CHUNK_SIZE", 64),
			HistoryLimit:            getEnvAsInt("QA_HISTORY_LIMIT", 12),
			FeedbackEnabled:         getEnvAsBool("FEEDBACK_ENABLED", true),
			AnonymousFeedback:       getEnv("FEEDBACK_ANONYMOUS_POLICY", "simplified"),
			TrustThreshold:          getEnvAsFloat("FEEDBACK_TRUST_THRESHOLD", 0.7),
			RetrievalTopK:           getEnvAsInt("RETRIEVAL_TOP_K", 10),
			RetrievalMinScore:       getEnvAsFloat("RETRIEVAL_MIN_SCORE", 0.35),
			RecencyHalfLifeDays:     getEnvAsInt("RETRIEVAL_HALF_LIFE_DAYS", 365),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
