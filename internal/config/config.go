package config

import (
	"path/filepath"
	"time"

	"inventory_control_backend/pkg/utils"
)

// Storage drivers for the ledger.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	Port        string
	DataDir     string
	CatalogFile string
	BackupDir   string
	StaticDir   string

	StorageDriver string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string

	RedisURL       string
	ReportCacheTTL time.Duration

	CORSAllowedOrigins []string
	// Products migrated to case_count=true when a legacy catalog without the column is loaded.
	LegacyCaseCountProducts []string
	MaxUploadBytes          int64

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment.
func Load() *Config {
	dataDir := utils.Getenv("DATA_DIR", "data")

	return &Config{
		Port:        utils.Getenv("PORT", "8080"),
		DataDir:     dataDir,
		CatalogFile: utils.Getenv("CATALOG_FILE", filepath.Join(dataDir, "products.csv")),
		BackupDir:   utils.Getenv("BACKUP_DIR", filepath.Join(dataDir, "backups")),
		StaticDir:   utils.Getenv("STATIC_DIR", ""),

		StorageDriver: utils.Getenv("STORAGE_DRIVER", StorageFile),
		DBHost:        utils.Getenv("DB_HOST", "localhost"),
		DBPort:        utils.Getenv("DB_PORT", "5432"),
		DBUser:        utils.Getenv("DB_USER", "inventory_user"),
		DBPassword:    utils.Getenv("DB_PASSWORD", "inventory_password"),
		DBName:        utils.Getenv("DB_NAME", "inventory_control"),
		DBSSLMode:     utils.Getenv("DB_SSLMODE", "disable"),

		RedisURL:       utils.Getenv("REDIS_URL", ""),
		ReportCacheTTL: utils.GetenvDuration("REPORT_CACHE_TTL", 5*time.Minute),

		CORSAllowedOrigins:      utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}),
		LegacyCaseCountProducts: utils.GetenvList("LEGACY_CASE_COUNT_PRODUCTS", nil),
		MaxUploadBytes:          int64(utils.GetenvInt("MAX_UPLOAD_MB", 32)) << 20,

		LogLevel:  utils.Getenv("LOG_LEVEL", "info"),
		LogFormat: utils.Getenv("LOG_FORMAT", "console"),
	}
}
