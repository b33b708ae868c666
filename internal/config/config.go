package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Identity IdentityConfig
	Tracing  TracingConfig
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
	Timeout    time.Duration // bound for every session store call
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
	OpenAI       string
}

type AIConfig struct {
	LLMProvider   string // "gemini", "openai" or "ollama"
	LLMModel      string
	OllamaBaseURL string
	Timeout       time.Duration
}

type IdentityConfig struct {
	Provider        string // "supabase" or "local"
	SupabaseURL     string
	SupabaseAnonKey string
	JWTSecret       string
	Timeout         time.Duration
	AutoConfirm     bool // local provider only
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string // host:port of the OTLP/HTTP collector
	Insecure    bool
	SampleRatio float64
	Environment string
}

// ConfigError reports missing or invalid settings discovered at startup.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Load reads .env (if present) and the process environment, then validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Timeout:    getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Oracle Support Assistant"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Timeout:       getEnvAsDuration("ASSISTANT_TIMEOUT", 60*time.Second),
		},
		Identity: IdentityConfig{
			Provider:        getEnv("IDENTITY_PROVIDER", "supabase"),
			SupabaseURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
			JWTSecret:       getEnv("JWT_SECRET", ""),
			Timeout:         getEnvAsDuration("IDENTITY_TIMEOUT", 15*time.Second),
			AutoConfirm:     getEnvAsBool("IDENTITY_AUTO_CONFIRM", false),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1.0),
			Environment: getEnv("GO_ENV", "development"),
		},
	}
}

// Validate fails fast on settings the app cannot run without.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.Connection == "" {
		problems = append(problems, "DB_CONNECTION_STRING is required")
	}

	switch c.Ai.LLMProvider {
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			problems = append(problems, "GOOGLE_API_KEY is required for the gemini provider")
		}
	case "openai":
		if c.Keys.OpenAI == "" {
			problems = append(problems, "OPENAI_API_KEY is required for the openai provider")
		}
	case "ollama":
		if c.Ai.OllamaBaseURL == "" {
			problems = append(problems, "OLLAMA_BASE_URL is required for the ollama provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported LLM_PROVIDER %q", c.Ai.LLMProvider))
	}

	if c.Identity.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	switch c.Identity.Provider {
	case "supabase":
		if c.Identity.SupabaseURL == "" || c.Identity.SupabaseAnonKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase identity provider")
		}
	case "local":
	default:
		problems = append(problems, fmt.Sprintf("unsupported IDENTITY_PROVIDER %q", c.Identity.Provider))
	}

	if c.Tracing.Enabled && (c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1) {
		problems = append(problems, "OTEL_SAMPLE_RATIO must be between 0 and 1")
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// IsConfigError reports whether err came from Validate.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
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

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
