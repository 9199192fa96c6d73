package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable through STORAGE_TYPE
const (
	StorageHTTP  = "http"
	StorageAzure = "azure"
	StorageLocal = "local"
)

// Database drivers selectable through DB_DRIVER
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Normalization
	MaxImageEdge    int
	MaxSourcePixels int

	// Image sources
	StorageType         string
	LocalStorageRoot    string
	AzureStorageAccount string
	AzureStorageKey     string

	// Remote URL policy
	AllowedImageHosts []string
	BlockPrivateHosts bool

	// Persistence
	DBDriver string
	DBDSN    string

	// Classification
	ToneRulesFile string

	// Batch processing
	BatchConcurrency int
	MaxBatchSize     int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables win.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:   parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:     parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		MaxImageEdge:        int(parseIntOrDefault("MAX_IMAGE_EDGE", 600)),
		MaxSourcePixels:     int(parseIntOrDefault("MAX_SOURCE_PIXELS", 50_000_000)),
		StorageType:         strings.ToLower(getEnvOrDefault("STORAGE_TYPE", StorageHTTP)),
		LocalStorageRoot:    getEnvOrDefault("LOCAL_STORAGE_ROOT", "."),
		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:     os.Getenv("AZURE_STORAGE_KEY"),
		AllowedImageHosts:   parseListOrEmpty("ALLOWED_IMAGE_HOSTS"),
		BlockPrivateHosts:   parseBoolOrDefault("BLOCK_PRIVATE_HOSTS", true),
		DBDriver:            strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverSQLite)),
		DBDSN:               getEnvOrDefault("DB_DSN", "file:tone_inspector.db"),
		ToneRulesFile:       os.Getenv("TONE_RULES_FILE"),
		BatchConcurrency:    int(parseIntOrDefault("BATCH_CONCURRENCY", 4)),
		MaxBatchSize:        int(parseIntOrDefault("MAX_BATCH_SIZE", 20)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values for consistency
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.MaxImageEdge <= 0 {
		return fmt.Errorf("MAX_IMAGE_EDGE must be > 0 (got %d)", c.MaxImageEdge)
	}
	if c.MaxSourcePixels <= 0 {
		return fmt.Errorf("MAX_SOURCE_PIXELS must be > 0 (got %d)", c.MaxSourcePixels)
	}
	if c.BatchConcurrency <= 0 || c.MaxBatchSize <= 0 {
		return fmt.Errorf("batch settings must be > 0 (got concurrency=%d, size=%d)",
			c.BatchConcurrency, c.MaxBatchSize)
	}

	switch c.StorageType {
	case StorageHTTP, StorageLocal:
	case StorageAzure:
		if c.AzureStorageAccount == "" || c.AzureStorageKey == "" {
			return fmt.Errorf("STORAGE_TYPE=azure requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %q", c.StorageType)
	}

	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %q", c.DBDriver)
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseListOrEmpty splits a comma separated variable, dropping blank entries
func parseListOrEmpty(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
