package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory_control_backend/internal/config"
	"inventory_control_backend/internal/database"
	"inventory_control_backend/internal/middleware"
	"inventory_control_backend/internal/repositories"
	"inventory_control_backend/internal/router"
	"inventory_control_backend/internal/services"
	"inventory_control_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional; real environment variables win.
	envErr := godotenv.Load()

	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		utils.LogWarn("Could not read .env file", map[string]interface{}{"error": envErr.Error()})
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		utils.LogError(err, "Failed to create data directory", map[string]interface{}{"dir": cfg.DataDir})
		os.Exit(1)
	}

	ledgerRepo, err := openLedgerRepository(cfg)
	if err != nil {
		utils.LogError(err, "Failed to open ledger storage", map[string]interface{}{"driver": cfg.StorageDriver})
		os.Exit(1)
	}
	defer database.CloseDB()

	var reportCache services.ReportCache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			utils.LogWarn("Redis unavailable, report cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			reportCache = services.NewRedisReportCache(redisClient, cfg.ReportCacheTTL)
			utils.LogInfo("Report cache enabled", map[string]interface{}{"ttl": cfg.ReportCacheTTL.String()})
		}
	}
	defer database.CloseRedis(redisClient)

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUploadBytes
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	engine.Use(cors.New(corsConfig))

	err = router.Setup(engine, router.Dependencies{
		CatalogRepo:     repositories.NewFileCatalogRepository(cfg.CatalogFile, cfg.BackupDir),
		LedgerRepo:      ledgerRepo,
		ReportCache:     reportCache,
		LegacyCaseCount: cfg.LegacyCaseCountProducts,
		StaticDir:       cfg.StaticDir,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	})
	if err != nil {
		utils.LogError(err, "Failed to initialize application")
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "storage": cfg.StorageDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.LogInfo("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
	utils.LogInfo("Server exited")
}

func openLedgerRepository(cfg *config.Config) (repositories.LedgerRepository, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := database.InitDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
		if err != nil {
			return nil, err
		}
		if err := database.ApplySchema(db, repositories.LedgerSchema); err != nil {
			return nil, err
		}
		return repositories.NewPostgresLedgerRepository(db), nil
	case config.StorageFile, "":
		utils.LogInfo("Using file ledger storage", map[string]interface{}{"dir": cfg.DataDir})
		return repositories.NewFileLedgerRepository(cfg.DataDir), nil
	default:
		return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
	}
}
