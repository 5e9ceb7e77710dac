package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Tools     ToolConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port              string
	ServiceName       string
	Version           string
	Environment       string
	LogFilePath       string
	StreamLogFilePath string
	FrontendOrigin    string
	NatsURL           string
	RedisURL          string
	JWTSecret         string
	MessageStore      string // "postgres" or "memory"
	SessionTTL        time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	XAI    string
	OpenAI string
}

type AIConfig struct {
	LLMProvider     string // "xai", "openai", "ollama"
	LLMModel        string
	LLMBaseURL      string
	ReasoningEffort string
	// Zero leaves the provider default in place.
	Temperature float64
	MaxTokens   int
}

// ToolConfig holds the arguments the heuristic tool matcher falls back to.
type ToolConfig struct {
	DefaultFilePath  string
	DefaultDirectory string
	EmailRecipient   string
	EmailSubject     string
}

type RateLimitConfig struct {
	Enabled bool
	Max     int
	Window  time.Duration
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:              getEnv("APP_PORT", "8000"),
			ServiceName:       getEnv("SERVICE_NAME", "roboto-sai-backend"),
			Version:           getEnv("SERVICE_VERSION", "0.1.0"),
			Environment:       getEnv("GO_ENV", "development"),
			LogFilePath:       getEnv("LOG_FILE_PATH", "logs/app.log"),
			StreamLogFilePath: getEnv("STREAM_LOG_FILE_PATH", "logs/stream.log"),
			FrontendOrigin:    getEnv("FRONTEND_ORIGIN", "http://localhost:8080"),
			NatsURL:           getEnv("NATS_URL", ""),
			RedisURL:          getEnv("REDIS_URL", ""),
			JWTSecret:         getEnv("JWT_SECRET", ""),
			MessageStore:      strings.ToLower(getEnv("MESSAGE_STORE", "postgres")),
			SessionTTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			XAI:    getEnv("XAI_API_KEY", ""),
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "xai")),
			LLMModel:        getEnv("LLM_MODEL", "grok-4"),
			LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
			ReasoningEffort: getEnv("REASONING_EFFORT", ""),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 0),
		},
		Tools: ToolConfig{
			DefaultFilePath:  getEnv("TOOL_DEFAULT_FILE_PATH", `D:\temp.txt`),
			DefaultDirectory: getEnv("TOOL_DEFAULT_DIRECTORY", `D:\`),
			EmailRecipient:   getEnv("TOOL_EMAIL_RECIPIENT", "demo@example.com"),
			EmailSubject:     getEnv("TOOL_EMAIL_SUBJECT", "Requested via Roboto SAI"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMITING_ENABLED", true),
			Max:     getEnvAsInt("RATE_LIMIT_MAX", 100),
			Window:  getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// APIKey returns the credential for the configured LLM provider.
func (c *Config) APIKey() string {
	switch c.Ai.LLMProvider {
	case "openai":
		return c.Keys.OpenAI
	case "ollama":
		return ""
	default:
		return c.Keys.XAI
	}
}

// AllowedOrigins normalises the comma separated FRONTEND_ORIGIN list.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.App.FrontendOrigin, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
