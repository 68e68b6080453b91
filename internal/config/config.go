package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Embedding EmbeddingConfig
	Redis     RedisConfig
	Worker    WorkerConfig
	Scoring   ScoringConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	AutoMigrate bool
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StorePostgres = "postgres"
	StoreQdrant   = "qdrant"
)

type EmbeddingConfig struct {
	Provider     string
	GeminiAPIKey string
	OpenAIAPIKey string
	Model        string
	Dimensions   int
	MaxRetries   int
	Store        string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

type ScoringConfig struct {
	BatchSize         int
	EmbeddingCacheTTL time.Duration
}

type LoggingConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	// .env is optional; a missing file leaves the process environment as is.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
		},
		Embedding: EmbeddingConfig{
			Provider:     strings.ToLower(v.GetString("EMBEDDING_PROVIDER")),
			GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
			OpenAIAPIKey: v.GetString("OPENAI_API_KEY"),
			Model:        v.GetString("EMBEDDING_MODEL"),
			Dimensions:   v.GetInt("EMBEDDING_DIMENSIONS"),
			MaxRetries:   v.GetInt("EMBEDDING_MAX_RETRIES"),
			Store:        strings.ToLower(v.GetString("EMBEDDING_STORE")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Worker: WorkerConfig{
			Concurrency:  v.GetInt("WORKER_CONCURRENCY"),
			QueueSize:    v.GetInt("WORKER_QUEUE_SIZE"),
			PollInterval: v.GetDuration("WORKER_POLL_INTERVAL"),
		},
		Scoring: ScoringConfig{
			BatchSize:         v.GetInt("SCORING_BATCH_SIZE"),
			EmbeddingCacheTTL: v.GetDuration("EMBEDDING_CACHE_TTL"),
		},
		Logging: LoggingConfig{
			JSON:  v.GetBool("LOG_JSON"),
			Debug: v.GetBool("LOG_DEBUG"),
		},
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ats_engine")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("QDRANT_URL", "")
	v.SetDefault("QDRANT_API_KEY", "")
	v.SetDefault("QDRANT_COLLECTION", "ats_embeddings")

	v.SetDefault("EMBEDDING_PROVIDER", ProviderGemini)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("EMBEDDING_MODEL", "")
	v.SetDefault("EMBEDDING_DIMENSIONS", 768)
	v.SetDefault("EMBEDDING_MAX_RETRIES", 3)
	v.SetDefault("EMBEDDING_STORE", StorePostgres)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("WORKER_CONCURRENCY", 3)
	v.SetDefault("WORKER_QUEUE_SIZE", 100)
	v.SetDefault("WORKER_POLL_INTERVAL", "10s")

	v.SetDefault("SCORING_BATCH_SIZE", 10)
	v.SetDefault("EMBEDDING_CACHE_TTL", "168h")

	v.SetDefault("LOG_JSON", false)
	v.SetDefault("LOG_DEBUG", false)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// EmbeddingAPIKey returns the credential of the configured provider. An
// empty key means semantic scoring cannot generate embeddings.
func (c *Config) EmbeddingAPIKey() string {
	switch c.Embedding.Provider {
	case ProviderOpenAI:
		return c.Embedding.OpenAIAPIKey
	default:
		return c.Embedding.GeminiAPIKey
	}
}

func (c *Config) EmbeddingModel() string {
	if c.Embedding.Model != "" {
		return c.Embedding.Model
	}
	if c.Embedding.Provider == ProviderOpenAI {
		return "text-embedding-3-small"
	}
	return "text-embedding-004"
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *Config) QdrantEnabled() bool {
	return c.Qdrant.URL != ""
}
