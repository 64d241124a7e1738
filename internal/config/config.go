package config

import (
	"errors"
	"fmt"
	"ocean-query-service/internal/domain"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	StoreDriver  string // "sqlite" or "postgres"
	DBPath       string
	DatabaseURL  string
	SamplesTable string

	PlacesPath      string
	PlacesFromDB    bool
	DefaultLocation *domain.Coordinates

	VectorIndexPath string
	VectorIndexURL  string
	VectorIndexKey  string
	VectorSearchK   int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers    []string
	KafkaAuditTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	QueryTimeout    time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		StoreDriver:     strings.ToLower(envOrDefault("STORE_DRIVER", "sqlite")),
		DBPath:          envOrDefault("DB_PATH", "data/argo.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SamplesTable:    envOrDefault("SAMPLES_TABLE", "samples"),
		PlacesPath:      os.Getenv("PLACES_PATH"),
		VectorIndexPath: os.Getenv("VECTOR_INDEX_PATH"),
		VectorIndexURL:  os.Getenv("VECTOR_INDEX_URL"),
		VectorIndexKey:  os.Getenv("VECTOR_INDEX_API_KEY"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:    parseList(os.Getenv("KAFKA_BROKERS")),
		KafkaAuditTopic: envOrDefault("KAFKA_AUDIT_TOPIC", "ocean-query-answers"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.PlacesFromDB, err = parseBool("PLACES_FROM_DB", false); err != nil {
		return nil, err
	}
	if cfg.VectorSearchK, err = parsePositiveInt("VECTOR_SEARCH_K", 10); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = parseNonNegativeInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.QueryTimeout, err = parseDuration("QUERY_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.DefaultLocation, err = parseDefaultLocation(); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			return nil, errors.New("DB_PATH is required when STORE_DRIVER is sqlite")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want sqlite or postgres", cfg.StoreDriver)
	}

	if !isIdentifier(cfg.SamplesTable) {
		return nil, fmt.Errorf("invalid SAMPLES_TABLE %q", cfg.SamplesTable)
	}
	if cfg.PlacesPath != "" && cfg.PlacesFromDB {
		return nil, errors.New("PLACES_PATH and PLACES_FROM_DB are mutually exclusive")
	}
	if cfg.VectorIndexPath != "" && cfg.VectorIndexURL != "" {
		return nil, errors.New("VECTOR_INDEX_PATH and VECTOR_INDEX_URL are mutually exclusive")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaAuditTopic == "" {
		return nil, errors.New("KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	n, err := parseNonNegativeInt(key, fallback)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return n, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

// DEFAULT_LAT and DEFAULT_LON must be set together.
func parseDefaultLocation() (*domain.Coordinates, error) {
	latStr, lonStr := os.Getenv("DEFAULT_LAT"), os.Getenv("DEFAULT_LON")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, errors.New("DEFAULT_LAT and DEFAULT_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LAT %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LON %q", lonStr)
	}

	c := domain.Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default location: %w", err)
	}
	return &c, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
