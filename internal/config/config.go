package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Provider settings. The base URL points at an OpenAI-compatible API.
	ProviderBaseURL string
	APIKeys         []string
	GenerationModel string
	EmbeddingModel  string
	VectorSize      int
	KeyResetWindow  time.Duration

	// Qdrant settings.
	QdrantURL        string
	QdrantCollection string

	// Retrieval tuning.
	DistanceThreshold float32
	RetrievalCeiling  int
	SemanticWeight    float32
	LexicalWeight     float32
	MMRLambda         float32

	// Ask operation budget.
	AskTimeout time.Duration

	DBPath    string
	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config
// struct. It applies defaults for optional fields and validates required
// fields. If a .env file exists in the current directory or a parent, it is
// loaded automatically; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up a few directories looking for a project-root .env.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		APIKeys:         loadAPIKeys(),
		GenerationModel: getEnv("GENERATION_MODEL", "gemini-2.0-flash"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-004"),

		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "note_chunks"),

		DBPath:    getEnv("DB_PATH", "./data/notesqa.db"),
		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("no API keys configured: set GEMINI_API_KEY or GEMINI_API_KEY_1..5")
	}

	var err error
	if cfg.VectorSize, err = getEnvInt("VECTOR_SIZE", 768); err != nil {
		return nil, err
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}
	if cfg.RetrievalCeiling, err = getEnvInt("RETRIEVAL_CEILING", 30); err != nil {
		return nil, err
	}
	if cfg.RetrievalCeiling <= 0 {
		return nil, fmt.Errorf("RETRIEVAL_CEILING must be greater than 0")
	}
	if cfg.DistanceThreshold, err = getEnvFloat("DISTANCE_THRESHOLD", 0.40); err != nil {
		return nil, err
	}
	if cfg.SemanticWeight, err = getEnvFloat("SEMANTIC_WEIGHT", 0.8); err != nil {
		return nil, err
	}
	if cfg.LexicalWeight, err = getEnvFloat("LEXICAL_WEIGHT", 0.2); err != nil {
		return nil, err
	}
	if cfg.MMRLambda, err = getEnvFloat("MMR_LAMBDA", 0.7); err != nil {
		return nil, err
	}
	if cfg.MMRLambda <= 0 || cfg.MMRLambda >= 1 {
		return nil, fmt.Errorf("MMR_LAMBDA must be in (0, 1)")
	}
	if cfg.AskTimeout, err = getEnvDuration("ASK_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.KeyResetWindow, err = getEnvDuration("KEY_RESET_WINDOW", time.Hour); err != nil {
		return nil, err
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Create the data directory if it doesn't exist.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadAPIKeys collects the primary key plus up to five numbered backup keys.
func loadAPIKeys() []string {
	var keys []string
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		keys = append(keys, key)
	}
	for i := 1; i <= 5; i++ {
		if key := os.Getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float32) (float32, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return float32(parsed), nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return parsed, nil
}
