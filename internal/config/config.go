package config

import (
	"log/slog"
	"os"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BinanceURL            string
	ExchangeRateURL       string
	DatabaseURL           string
	HTTPPort              string
	HTTPClientTimeout     time.Duration
	AdminAPIKey           string
	SheetsSpreadsheetID   string
	GoogleCredentialsJSON string
	SheetsExportInterval  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		BinanceURL:            envOrDefault("BINANCE_URL", "https://api.binance.com"),
		ExchangeRateURL:       envOrDefault("EXCHANGERATE_URL", "https://api.exchangerate.host"),
		DatabaseURL:           envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		HTTPClientTimeout:     envOrDefaultDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		AdminAPIKey:           os.Getenv("ADMIN_API_KEY"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		SheetsExportInterval:  envOrDefaultDuration("SHEETS_EXPORT_INTERVAL", 24*time.Hour),
	}
}

// SheetsConfigured reports whether the Google Sheets destination is usable.
func (c Config) SheetsConfigured() bool {
	return c.SheetsSpreadsheetID != "" && c.GoogleCredentialsJSON != ""
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
