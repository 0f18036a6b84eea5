package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Inference server addresses tried in order when OLLAMA_URL does not win
var defaultInferenceCandidates = []string{
	"http://ollama:11434",
	"http://localhost:11434",
	"http://host.docker.internal:11434",
	"http://172.17.0.1:11434",
}

type ServerConfig struct {
	Port            string
	Env             string
	Version         string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type AuthConfig struct {
	JWTSecret string
	JWKSURL   string
	Issuer    string
	TokenTTL  time.Duration
}

type InferenceConfig struct {
	// Candidates is ordered, highest priority first
	Candidates          []string
	DefaultModel        string
	HealthPath          string
	ProbeTimeout        time.Duration
	RequestTimeout      time.Duration
	HealthOfflineStatus int
}

type LimitsConfig struct {
	MinContextLength   int
	MaxContextLength   int
	MaxInstructions    int
	MaxMessageLength   int
	RateLimitPerMinute int
	HistoryDefault     int
	HistoryMax         int
}

type CacheConfig struct {
	AIConfigTTL time.Duration
}

type JobsConfig struct {
	ProbeInterval  time.Duration
	ArchiveEnabled bool
	ArchiveAt      string
}

type LogConfig struct {
	Level string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Minio       MinioConfig
	Auth        AuthConfig
	Inference   InferenceConfig
	Limits      LimitsConfig
	Cache       CacheConfig
	Jobs        JobsConfig
	Log         LogConfig
}

// Load reads an optional .env file and then the process environment
func Load(serviceName string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		ServiceName: serviceName,
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			Version:         getEnv("APP_VERSION", "1.0.0"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 20)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			Bucket:    getEnv("MINIO_ARCHIVE_BUCKET", "interaction-archive"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWKSURL:   getEnv("JWKS_URL", ""),
			Issuer:    getEnv("JWT_ISSUER", serviceName),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Inference: InferenceConfig{
			Candidates:          inferenceCandidates(getEnv("OLLAMA_URL", ""), getEnv("OLLAMA_CANDIDATES", "")),
			DefaultModel:        getEnv("OLLAMA_DEFAULT_MODEL", "llama3"),
			HealthPath:          getEnv("OLLAMA_HEALTH_PATH", "/api/tags"),
			ProbeTimeout:        getEnvAsDuration("OLLAMA_PROBE_TIMEOUT", 3*time.Second),
			RequestTimeout:      getEnvAsDuration("OLLAMA_TIMEOUT", 60*time.Second),
			HealthOfflineStatus: getEnvAsInt("HEALTH_OFFLINE_STATUS", http.StatusServiceUnavailable),
		},
		Limits: LimitsConfig{
			MinContextLength:   getEnvAsInt("MCP_MIN_CONTEXT_LENGTH", 1000),
			MaxContextLength:   getEnvAsInt("MCP_MAX_CONTEXT_LENGTH", 8000),
			MaxInstructions:    getEnvAsInt("MCP_MAX_INSTRUCTIONS", 1000),
			MaxMessageLength:   getEnvAsInt("MCP_MAX_MESSAGE_LENGTH", 2000),
			RateLimitPerMinute: getEnvAsInt("MCP_RATE_LIMIT", 100),
			HistoryDefault:     getEnvAsInt("MCP_HISTORY_DEFAULT", 20),
			HistoryMax:         getEnvAsInt("MCP_HISTORY_MAX", 100),
		},
		Cache: CacheConfig{
			AIConfigTTL: getEnvAsDuration("AI_CONFIG_CACHE_TTL", 5*time.Minute),
		},
		Jobs: JobsConfig{
			ProbeInterval:  getEnvAsDuration("PROBE_INTERVAL", time.Minute),
			ArchiveEnabled: getEnvAsBool("ARCHIVE_ENABLED", false),
			ArchiveAt:      getEnv("ARCHIVE_AT", "00:15"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var problems []string

	if c.Database.URL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		problems = append(problems, "one of JWT_SECRET or JWKS_URL is required")
	}
	if len(c.Inference.Candidates) == 0 {
		problems = append(problems, "at least one inference candidate is required")
	}
	if c.Limits.MinContextLength <= 0 || c.Limits.MinContextLength > c.Limits.MaxContextLength {
		problems = append(problems, "context length bounds are inconsistent")
	}
	if c.Limits.MaxMessageLength <= 0 || c.Limits.MaxInstructions <= 0 {
		problems = append(problems, "message and instruction limits must be positive")
	}
	if c.Limits.HistoryDefault <= 0 || c.Limits.HistoryDefault > c.Limits.HistoryMax {
		problems = append(problems, "history limits are inconsistent")
	}
	if c.Inference.HealthOfflineStatus != http.StatusOK && c.Inference.HealthOfflineStatus != http.StatusServiceUnavailable {
		problems = append(problems, "HEALTH_OFFLINE_STATUS must be 200 or 503")
	}
	if _, err := time.Parse("15:04", c.Jobs.ArchiveAt); err != nil {
		problems = append(problems, "ARCHIVE_AT must be HH:MM")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogFields returns the non-secret configuration as zap fields
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("redis_addr", c.Redis.Addr),
		zap.String("minio_endpoint", c.Minio.Endpoint),
		zap.Strings("inference_candidates", c.Inference.Candidates),
		zap.Bool("jwks", c.Auth.JWKSURL != ""),
		zap.Bool("archive_enabled", c.Jobs.ArchiveEnabled),
	}
}

// inferenceCandidates builds the ordered candidate list. An explicit override
// goes first, followed by the configured or built-in list, without duplicates.
func inferenceCandidates(override, list string) []string {
	base := defaultInferenceCandidates
	if strings.TrimSpace(list) != "" {
		base = strings.Split(list, ",")
	}

	seen := make(map[string]bool)
	var out []string
	for _, raw := range append([]string{override}, base...) {
		u := strings.TrimRight(strings.TrimSpace(raw), "/")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
