package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Text intelligence
	IntelBackend  string // "http" (NLP sidecar) or "openai"
	NLPServiceURL string
	NLPTimeout    time.Duration

	// OpenAI-compatible endpoint (used when IntelBackend == "openai")
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	EmbeddingModel string

	// Relationship synchronization
	SyncConcurrency int

	// Discord capture bot
	DiscordBotToken string
	NotesChannelID  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		Neo4jURI:        getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:       getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:   getEnv("NEO4J_PASSWORD", "password"),
		IntelBackend:    getEnv("INTEL_BACKEND", "http"),
		NLPServiceURL:   getEnv("NLP_SERVICE_URL", "http://localhost:5000"),
		NLPTimeout:      time.Duration(getEnvInt("NLP_TIMEOUT_MS", 15000)) * time.Millisecond,
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "http://localhost:4000"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		SyncConcurrency: getEnvInt("SYNC_CONCURRENCY", 4),
		DiscordBotToken: getEnv("DISCORD_BOT_TOKEN", ""),
		NotesChannelID:  getEnv("NOTES_CHANNEL_ID", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	switch c.IntelBackend {
	case "http":
		if c.NLPServiceURL == "" {
			return fmt.Errorf("NLP_SERVICE_URL is required when INTEL_BACKEND=http")
		}
	case "openai":
		if c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_BASE_URL is required when INTEL_BACKEND=openai")
		}
	default:
		return fmt.Errorf("INTEL_BACKEND must be \"http\" or \"openai\", got %q", c.IntelBackend)
	}
	if c.SyncConcurrency < 1 {
		return fmt.Errorf("SYNC_CONCURRENCY must be at least 1")
	}
	// Discord token is optional: the capture bot is a separate binary
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
