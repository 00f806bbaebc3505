package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// Provider credentials are optional at startup; requests that need a missing
// credential fail with a configuration error instead.
type Config struct {
	AppEnv                string
	Port                  string
	DefaultLocale         string
	GeoIPDBPath           string
	RedisURL              string
	CORSAllowedOrigins    []string
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIBaseURL         string
	OpenAIOrg             string
	ReplicateAPIToken     string
	ReplicateBaseURL      string
	ReplicateModelVersion string
	PollInterval          time.Duration
	PollMaxAttempts       int
	GenerationTimeout     time.Duration
	DescriptionMaxLength  int
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
	RateLimitPerMin       int
	OpenAPISpecURL        string
}

// DefaultOpenAPISpecURL is where the router serves the OpenAPI document.
const DefaultOpenAPISpecURL = "/v1/openapi.json"

const defaultReplicateModelVersion = "9936c2001faa2194a261c01381f90e65261879985476014a0a37a334593a05eb"

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		DefaultLocale:         getEnv("DEFAULT_LOCALE", "pt"),
		GeoIPDBPath:           os.Getenv("GEOIP_DB_PATH"),
		RedisURL:              strings.TrimSpace(os.Getenv("REDIS_URL")),
		CORSAllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		OpenAIAPIKey:          strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-3.5-turbo-instruct"),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:             os.Getenv("OPENAI_ORG"),
		ReplicateAPIToken:     strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		ReplicateBaseURL:      getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		ReplicateModelVersion: getEnv("REPLICATE_MODEL_VERSION", defaultReplicateModelVersion),
		PollInterval:          time.Millisecond * time.Duration(getEnvInt("IMAGE_POLL_INTERVAL_MS", 1000)),
		PollMaxAttempts:       getEnvInt("IMAGE_POLL_MAX_ATTEMPTS", 300),
		GenerationTimeout:     time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 330)),
		DescriptionMaxLength:  getEnvInt("DESCRIPTION_MAX_LENGTH", 70),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 340)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:       getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		OpenAPISpecURL:        getEnv("OPENAPI_SPEC_URL", DefaultOpenAPISpecURL),
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = 300
	}

	return cfg, nil
}

// HasOpenAI reports whether the text provider credential is present.
func (c *Config) HasOpenAI() bool {
	return c != nil && c.OpenAIAPIKey != ""
}

// HasReplicate reports whether the image provider credential is present.
func (c *Config) HasReplicate() bool {
	return c != nil && c.ReplicateAPIToken != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
