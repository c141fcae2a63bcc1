package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port   string
	Source string // "http" or "sql"

	ColumnsURL string
	RecordsURL string

	AttachmentBaseURL    string
	AttachmentEndpointID string

	Locale         string
	LayoutPath     string // optional YAML slot layout, embedded default when empty
	FrameAncestors string
	LogLevel       string

	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	DBEngine  string // "postgresql", "mysql", "sqlite"
	DBPath    string // For SQLite
	DBSSLMode string
	DBDSN     string // overrides the fields above when set

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Port:                 getEnv("PORT", "8080"),
		Source:               strings.ToLower(getEnv("SOURCE", "http")),
		ColumnsURL:           getEnv("COLUMNS_API_URL", "https://grappe.io/data/api/67e2ee43fa335e76dbf6c4e3-thera_get_columns"),
		RecordsURL:           getEnv("RECORDS_API_URL", "https://grappe.io/data/api/67e2ed7dfa335e76dbf6c489-thera_get_records"),
		AttachmentBaseURL:    strings.TrimRight(getEnv("ATTACHMENT_BASE_URL", "https://grappe.io/data/api/attachments"), "/"),
		AttachmentEndpointID: getEnv("ATTACHMENT_ENDPOINT_ID", ""),
		Locale:               getEnv("LOCALE", "fr"),
		LayoutPath:           getEnv("LAYOUT_PATH", ""),
		FrameAncestors:       getEnv("FRAME_ANCESTORS", "*"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBName:               getEnv("DB_NAME", "directory"),
		DBUser:               getEnv("DB_USER", "directory"),
		DBPass:               getEnv("DB_PASS", "directory"),
		DBEngine:             getEnv("DB_ENGINE", "sqlite"),
		DBPath:               getEnv("DB_PATH", "directory.db"),
		DBSSLMode:            getEnv("DB_SSL_MODE", "prefer"),
		DBDSN:                getEnv("DB_DSN", ""),
		ReadTimeout:          getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:         getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
