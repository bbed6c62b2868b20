package router

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"inventory_control_backend/internal/handlers"
	"inventory_control_backend/internal/middleware"
	"inventory_control_backend/internal/repositories"
	"inventory_control_backend/internal/services"
	"inventory_control_backend/pkg/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Dependencies are the stores and options the API is built from.
type Dependencies struct {
	CatalogRepo repositories.CatalogRepository
	LedgerRepo  repositories.LedgerRepository
	// ReportCache may be nil.
	ReportCache     services.ReportCache
	LegacyCaseCount []string
	StaticDir       string
	MaxUploadBytes  int64
}

// Setup loads the catalog and ledger, wires services and handlers and registers every route.
func Setup(engine *gin.Engine, deps Dependencies) error {
	// Initialize Services
	catalogService, err := services.NewCatalogService(deps.CatalogRepo, deps.LegacyCaseCount)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	ledgerService, err := services.NewLedgerService(deps.LedgerRepo, nil)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	invoiceService := services.NewInvoiceImportService(services.NewInvoiceNormalizer(), catalogService, ledgerService)
	officialOrderService := services.NewOfficialOrderService(catalogService, ledgerService)
	reportService := services.NewReportService(catalogService, ledgerService, deps.ReportCache)

	// Initialize Handlers
	productHandler := handlers.NewProductHandler(catalogService)
	inventoryHandler := handlers.NewInventoryHandler(ledgerService, catalogService)
	orderHandler := handlers.NewOrderHandler(ledgerService, invoiceService, officialOrderService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	reportHandler := handlers.NewReportHandler(reportService)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"products": len(catalogService.List()),
		})
	})

	api := engine.Group("/api")
	api.Use(gzip.Gzip(gzip.DefaultCompression), middleware.SingleWriter())
	{
		SetupProductRoutes(api, productHandler, deps.MaxUploadBytes)
		SetupInventoryRoutes(api, inventoryHandler, deps.MaxUploadBytes)
		SetupOrderRoutes(api, orderHandler, deps.MaxUploadBytes)
		SetupInvoiceRoutes(api, invoiceHandler)
		SetupReportRoutes(api, reportHandler)
	}

	engine.NoRoute(frontend(deps.StaticDir))
	return nil
}

// frontend serves the single-page app from dir, falling back to index.html.
// Unknown /api paths get a JSON 404.
func frontend(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || dir == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Not found", path))
			return
		}
		file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.Header("Cache-Control", "no-cache")
		c.File(filepath.Join(dir, "index.html"))
	}
}
