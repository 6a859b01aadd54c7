package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Logging
	LogLevel  slog.Level
	LogFormat string

	// Completion endpoint (OpenAI-compatible, base URL includes /v1)
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string
	LLMProvider  string

	// Embeddings endpoint (may be the same server as the completion one)
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string

	// Conversation storage
	DBPath string

	// Vector store
	QdrantURL        string
	QdrantVectorSize int

	// Ingestion
	SheetBaseURL string
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	SearchK         int
	ChatRetrieveK   int
	HistoryWindow   int
	WorkingLanguage string

	// Translator (optional; empty endpoint disables translation)
	TranslatorEndpoint string
	TranslatorKey      string
	TranslatorRegion   string

	// Groundedness check (optional; empty endpoint disables it)
	SafetyEndpoint     string
	SafetyKey          string
	SafetyAPIVersion   string
	RedactionThreshold float64

	// API surface
	APIPort     string
	APIKey      string
	APIKeyWrite string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	// Try to find project root by looking for go.mod
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModelName:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:          os.Getenv("LLM_API_KEY"),
		LLMProvider:        getEnv("LLM_PROVIDER", "OpenAI"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		DBPath:             getEnv("DB_PATH", "./data/faqsearch.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		SheetBaseURL:       os.Getenv("SHEET_BASE_URL"),
		WorkingLanguage:    getEnv("WORKING_LANGUAGE", "en"),
		TranslatorEndpoint: os.Getenv("TRANSLATOR_ENDPOINT"),
		TranslatorKey:      os.Getenv("TRANSLATOR_KEY"),
		TranslatorRegion:   os.Getenv("TRANSLATOR_REGION"),
		SafetyEndpoint:     os.Getenv("CONTENT_SAFETY_ENDPOINT"),
		SafetyKey:          os.Getenv("CONTENT_SAFETY_KEY"),
		SafetyAPIVersion:   getEnv("CONTENT_SAFETY_API_VERSION", "2024-09-15-preview"),
		APIPort:            getEnv("API_PORT", "9000"),
		APIKey:             os.Getenv("API_KEY"),
		APIKeyWrite:        os.Getenv("API_KEY_WRITE"),
	}
	cfg.EmbeddingAPIKey = getEnv("EMBEDDING_API_KEY", cfg.LLMAPIKey)

	cfg.LogFormat = getEnv("LOG_FORMAT", "text")
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json")
	}
	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	// Note: This must match the output vector size of the embeddings model.
	// If the vector size changes, existing collections must be rebuilt.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 20); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	if cfg.SearchK, err = getEnvInt("SEARCH_K", 5); err != nil {
		return nil, err
	}
	if cfg.ChatRetrieveK, err = getEnvInt("CHAT_RETRIEVE_K", 10); err != nil {
		return nil, err
	}
	if cfg.HistoryWindow, err = getEnvInt("HISTORY_WINDOW", 10); err != nil {
		return nil, err
	}

	thresholdStr := getEnv("REDACTION_THRESHOLD", "0.25")
	cfg.RedactionThreshold, err = strconv.ParseFloat(thresholdStr, 64)
	if err != nil {
		return nil, fmt.Errorf("REDACTION_THRESHOLD must be a valid number: %w", err)
	}
	if cfg.RedactionThreshold < 0 || cfg.RedactionThreshold > 1 {
		return nil, fmt.Errorf("REDACTION_THRESHOLD must be between 0 and 1")
	}

	// Create ./data directory if it doesn't exist (for future DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// parseLogLevel maps a level name to a slog.Level.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}
