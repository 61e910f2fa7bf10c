package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Chat      ChatConfig
	LLM       LLMConfig
	Reminder  ReminderConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	// Per client IP
	RequestsPerSecond float64
	BurstSize         int
}

// ChatConfig controls where conversation sessions live between turns.
type ChatConfig struct {
	SessionStore string // "memory" | "redis"
	RedisURL     string
	SessionTTL   time.Duration
	MaxHops      int
}

type LLMConfig struct {
	Enabled        bool
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	// Consecutive failures before the breaker opens
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type ReminderConfig struct {
	PollInterval  time.Duration
	QueueCapacity int
	BatchSize     int
	Timezone      string
}

func Load() (*Config, error) {
	breakerFailures := getEnvInt("LLM_BREAKER_FAILURES", 5)

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "medibook-api"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "medibook"),
			User:            getEnv("DB_USER", "medibook"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", ""),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TTL", 60*time.Minute),
			Issuer:         getEnv("JWT_ISSUER", "medibook-api"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "medibook-api"),
			Endpoint:    getEnv("OTLP_ENDPOINT", "otel-collector:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-Request-ID"}),
			MaxAge:         getEnvDuration("CORS_MAX_AGE", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 20),
			BurstSize:         getEnvInt("RATE_LIMIT_BURST", 40),
		},
		Chat: ChatConfig{
			SessionStore: strings.ToLower(getEnv("CHAT_SESSION_STORE", "memory")),
			RedisURL:     getEnv("CHAT_REDIS_URL", ""),
			SessionTTL:   getEnvDuration("CHAT_SESSION_TTL", 30*time.Minute),
			MaxHops:      getEnvInt("CHAT_MAX_HOPS", 3),
		},
		LLM: LLMConfig{
			Enabled:         getEnvBool("LLM_ENABLED", false),
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			Model:           getEnv("OPENAI_MODEL_CHAT", "gpt-4o-mini"),
			RequestTimeout:  getEnvDuration("LLM_REQUEST_TIMEOUT", 8*time.Second),
			BreakerFailures: uint32(max(breakerFailures, 0)),
			BreakerTimeout:  getEnvDuration("LLM_BREAKER_TIMEOUT", 30*time.Second),
		},
		Reminder: ReminderConfig{
			PollInterval:  getEnvDuration("REMINDER_POLL_INTERVAL", time.Minute),
			QueueCapacity: getEnvInt("REMINDER_QUEUE_CAPACITY", 100),
			BatchSize:     getEnvInt("REMINDER_BATCH_SIZE", 500),
			Timezone:      getEnv("REMINDER_TIMEZONE", "UTC"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces production security requirements.
func validate(cfg *Config) error {
	var errs []string

	if cfg.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required")
	} else if len(cfg.JWT.Secret) < 32 && cfg.App.Environment == "production" {
		errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
	}

	if cfg.Database.Password == "" && cfg.App.Environment != "development" {
		errs = append(errs, "DB_PASSWORD is required in non-development environments")
	}

	if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
		errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
	}

	switch cfg.Chat.SessionStore {
	case "memory":
	case "redis":
		if cfg.Chat.RedisURL == "" {
			errs = append(errs, "CHAT_REDIS_URL is required when CHAT_SESSION_STORE=redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("CHAT_SESSION_STORE must be memory or redis, got %q", cfg.Chat.SessionStore))
	}

	// general -> check_inactive_appointments -> settle takes two hops.
	if cfg.Chat.MaxHops < 2 {
		errs = append(errs, "CHAT_MAX_HOPS must be at least 2")
	}

	if cfg.LLM.Enabled && cfg.LLM.APIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is required when LLM_ENABLED=true")
	}

	if cfg.LLM.BreakerFailures < 1 {
		errs = append(errs, "LLM_BREAKER_FAILURES must be at least 1")
	}

	if _, err := time.LoadLocation(cfg.Reminder.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("REMINDER_TIMEZONE %q is not a valid location", cfg.Reminder.Timezone))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
