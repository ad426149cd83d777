package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server and the CLI commands read.
type Config struct {
	Port   string
	DBPath string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	LogLevel string
	LogFile  string

	CORSOrigin string

	NotifyWebhookURL string
	NotifyDays       []int
	NotifyHour       int

	SnapshotTTL time.Duration
}

// Load reads envFile (when it exists) into the environment and builds a Config from
// environment variables, falling back to defaults. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// a missing .env file is fine, variables may come from the environment
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8008"),
		DBPath:           getEnv("DB_PATH", "gantt-planner.db"),
		JWTSecret:        getEnv("JWT_SECRET", "development-insecure-secret-change-me"),
		JWTIssuer:        getEnv("JWT_ISSUER", "gantt-planner-api"),
		JWTAudience:      getEnv("JWT_AUDIENCE", "gantt-planner-clients"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		CORSOrigin:       getEnv("CORS_ORIGIN", "*"),
		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
	}

	var err error
	if cfg.TokenTTL, err = getDurationEnv("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SnapshotTTL, err = getDurationEnv("SNAPSHOT_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.NotifyHour, err = getIntEnv("NOTIFY_HOUR", 9); err != nil {
		return nil, err
	}
	if cfg.NotifyHour < 0 || cfg.NotifyHour > 23 {
		return nil, fmt.Errorf("NOTIFY_HOUR must be between 0 and 23, got %d", cfg.NotifyHour)
	}
	if cfg.NotifyDays, err = getIntListEnv("NOTIFY_DAYS", []int{1, 3}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getIntListEnv(key string, fallback []int) ([]int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid day count %q", key, part)
		}
		out = append(out, n)
	}
	return out, nil
}
