package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDerivesPathsFromDataDir(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/inventory")
	t.Setenv("CATALOG_FILE", "")
	t.Setenv("BACKUP_DIR", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg := Load()
	if cfg.CatalogFile != filepath.Join("/srv/inventory", "products.csv") {
		t.Fatalf("CatalogFile = %q", cfg.CatalogFile)
	}
	if cfg.BackupDir != filepath.Join("/srv/inventory", "backups") {
		t.Fatalf("BackupDir = %q", cfg.BackupDir)
	}
	if cfg.StorageDriver != StorageFile {
		t.Fatalf("StorageDriver = %q", cfg.StorageDriver)
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", StoragePostgres)
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("LEGACY_CASE_COUNT_PRODUCTS", "12345, 67890")
	t.Setenv("MAX_UPLOAD_MB", "4")

	cfg := Load()
	if cfg.StorageDriver != StoragePostgres {
		t.Fatalf("StorageDriver = %q", cfg.StorageDriver)
	}
	if cfg.ReportCacheTTL != 30*time.Second {
		t.Fatalf("ReportCacheTTL = %v", cfg.ReportCacheTTL)
	}
	if len(cfg.LegacyCaseCountProducts) != 2 || cfg.LegacyCaseCountProducts[1] != "67890" {
		t.Fatalf("LegacyCaseCountProducts = %q", cfg.LegacyCaseCountProducts)
	}
	if cfg.MaxUploadBytes != 4<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
}
