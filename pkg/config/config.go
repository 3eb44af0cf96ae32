package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const defaultJWTSecret = "dev_secret"

// Config is the process configuration, read from the environment with .env as a fallback.
type Config struct {
	Env             string
	Port            int
	APIPrefix       string
	ShutdownTimeout time.Duration

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Cache      CacheConfig
	Jobs       JobsConfig
	Extensions ExtensionsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig describes the bearer tokens accepted by the API.
type JWTConfig struct {
	Secret     string
	Issuer     string
	Audience   []string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig controls Redis caching of milestone definitions and open days.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// JobsConfig sizes the background recompute worker pool.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// ExtensionsConfig holds the values stamped on self-service extension appeals.
type ExtensionsConfig struct {
	Circumstances      string
	Interviewer        string
	FinalRetryAttempts int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 15*time.Second)

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Audience:   splitAndTrim(v.GetString("JWT_AUDIENCE")),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 15*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("RECOMPUTE_WORKERS"),
		BufferSize: v.GetInt("RECOMPUTE_BUFFER_SIZE"),
		MaxRetries: v.GetInt("RECOMPUTE_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("RECOMPUTE_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Extensions = ExtensionsConfig{
		Circumstances:      v.GetString("EXTENSION_CIRCUMSTANCES"),
		Interviewer:        v.GetString("EXTENSION_INTERVIEWER"),
		FinalRetryAttempts: v.GetInt("EXTENSION_F1_ATTEMPTS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Env == EnvProduction && c.JWT.Secret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed in production"))
	}
	if c.Jobs.Workers < 1 {
		errs = append(errs, fmt.Errorf("RECOMPUTE_WORKERS must be at least 1, got %d", c.Jobs.Workers))
	}
	if c.Extensions.FinalRetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("EXTENSION_F1_ATTEMPTS must not be negative, got %d", c.Extensions.FinalRetryAttempts))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mathops")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")
	v.SetDefault("JWT_EXPIRATION", "15m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("RECOMPUTE_WORKERS", 4)
	v.SetDefault("RECOMPUTE_BUFFER_SIZE", 64)
	v.SetDefault("RECOMPUTE_MAX_RETRIES", 2)
	v.SetDefault("RECOMPUTE_RETRY_DELAY", "2s")

	v.SetDefault("EXTENSION_CIRCUMSTANCES", "Requested extension via website")
	v.SetDefault("EXTENSION_INTERVIEWER", "websites")
	v.SetDefault("EXTENSION_F1_ATTEMPTS", 1)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
