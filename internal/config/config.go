package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded once from the environment
// at process start and passed explicitly into constructors.
type Config struct {
	HTTPPort        string
	DatabaseURL     string
	DBPoolSize      int
	RedisURL        string
	RedisPoolSize   int
	CacheTTL        time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
	JWTSecret       string
	TokenTTL        time.Duration
	UploadDir       string
	MaxUploadBytes  int64
	GuestTodoLimit  int
	AuthRateLimit   int
	AuthRateWindow  time.Duration
}

// Load reads configuration from the environment. JWT_SECRET and DATABASE_URL
// are required: there is no insecure fallback secret.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBPoolSize:      getIntEnv("DB_POOL_SIZE", 100),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPoolSize:   getIntEnv("REDIS_POOL_SIZE", 100),
		CacheTTL:        time.Duration(getIntEnv("CACHE_TTL_SEC", 300)) * time.Second,
		KafkaBrokers:    getSliceEnv("KAFKA_BROKERS", ""),
		KafkaTopic:      getEnv("KAFKA_TODO_TOPIC", "todo-events"),
		KafkaPartitions: getIntEnv("KAFKA_PARTITIONS", 16),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        time.Duration(getIntEnv("TOKEN_TTL_HOURS", 24*7)) * time.Hour,
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:  int64(getIntEnv("MAX_UPLOAD_BYTES", 5<<20)),
		GuestTodoLimit:  getIntEnv("GUEST_TODO_LIMIT", 3),
		AuthRateLimit:   getIntEnv("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:  time.Duration(getIntEnv("AUTH_RATE_WINDOW_SEC", 15*60)) * time.Second,
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getSliceEnv(key, defaultVal string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
