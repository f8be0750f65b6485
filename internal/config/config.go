package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCatalogBaseURL = "https://openapi.programming-hero.com/api"
	defaultCacheContainer = "catalog"
)

type Config struct {
	Catalog  CatalogConfig  `json:"catalog"`
	Cache    CacheConfig    `json:"cache"`
	Currency CurrencyConfig `json:"currency"`
	Logging  LoggingConfig  `json:"logging"`
	Tracing  TracingConfig  `json:"tracing"`
}

// CatalogConfig points the client at the catalog provider.
type CatalogConfig struct {
	BaseURL  string        `json:"base_url"`
	Timeout  time.Duration `json:"timeout"`
	RetryMax int           `json:"retry_max"`
	// HTTPClient overrides the retrying transport. Tests set this to an httptest client.
	HTTPClient *http.Client `json:"-"`
}

// CacheConfig selects where last-known-good catalog snapshots live.
// Blob storage wins over a directory; neither means process memory.
type CacheConfig struct {
	Dir              string `json:"dir"`
	AzureAccountName string `json:"azure_account_name"`
	AzureAccountKey  string `json:"-"`
	Container        string `json:"container"`
}

type CurrencyConfig struct {
	Symbol string `json:"symbol"`
	Locale string `json:"locale"`
}

// LoggingConfig sets the slog level. When BlobContainer is set, logs are also
// appended to blob storage using the cache's storage account.
type LoggingConfig struct {
	Level         string `json:"level"`
	BlobContainer string `json:"blob_container"`
}

type TracingConfig struct {
	Endpoint string `json:"endpoint"`
}

func Load() (*Config, error) {
	timeout, err := durationFromEnv("CATALOG_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	retryMax, err := intFromEnv("CATALOG_RETRY_MAX", 2)
	if err != nil {
		return nil, err
	}
	if retryMax < 0 {
		return nil, fmt.Errorf("CATALOG_RETRY_MAX must not be negative, got %d", retryMax)
	}

	config := &Config{
		Catalog: CatalogConfig{
			BaseURL:  strings.TrimRight(getEnvOrDefault("CATALOG_BASE_URL", DefaultCatalogBaseURL), "/"),
			Timeout:  timeout,
			RetryMax: retryMax,
		},
		Cache: CacheConfig{
			Dir:              os.Getenv("CACHE_DIR"),
			AzureAccountName: os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
			AzureAccountKey:  os.Getenv("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY"),
			Container:        getEnvOrDefault("CACHE_CONTAINER", defaultCacheContainer),
		},
		Currency: CurrencyConfig{
			Symbol: getEnvOrDefault("CURRENCY_SYMBOL", "৳"),
			Locale: getEnvOrDefault("CURRENCY_LOCALE", "en-IN"),
		},
		Logging: LoggingConfig{
			Level:         getEnvOrDefault("LOG_LEVEL", "info"),
			BlobContainer: os.Getenv("LOG_BLOB_CONTAINER"),
		},
		Tracing: TracingConfig{
			Endpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func durationFromEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
