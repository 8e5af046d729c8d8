package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"

	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

type Config struct {
	HTTPPort  string
	LogLevel  string
	LogFormat string

	StoreDriver string
	MongoURI    string
	DBName      string
	DatabaseURL string
	RedisURL    string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	LLMProvider     string
	LLMModel        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AgentTimeout    time.Duration

	HistoryWindow int
	PersonasFile  string
}

// LoadConfig reads the environment (and a .env file when present) and
// validates the values the selected drivers depend on.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:    getEnv("MONGO_URI", ""),
		DBName:      getEnv("DB_NAME", ""),
		DatabaseURL: getEnv("DATABASE_URL", "wellbeing_chat.db"),
		RedisURL:    getEnv("REDIS_URL", ""),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:  getEnvAsBool("COOKIE_SECURE", true),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		LLMModel:        getEnv("LLM_MODEL", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AgentTimeout:    getEnvAsDuration("AGENT_TIMEOUT", 30*time.Second),

		HistoryWindow: getEnvAsInt("CHAT_HISTORY_WINDOW", 10),
		PersonasFile:  getEnv("PERSONAS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings required by the chosen store driver and
// LLM provider.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.DBName == "" {
			return fmt.Errorf("MONGO_URI and DB_NAME are required for the %s driver", DriverMongo)
		}
	case DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", DriverSQLite)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}

	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %s", c.LLMProvider)
	}

	if c.HistoryWindow < 0 {
		return fmt.Errorf("CHAT_HISTORY_WINDOW must not be negative")
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
