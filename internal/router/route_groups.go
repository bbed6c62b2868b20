package router

import (
	"inventory_control_backend/internal/handlers"
	"inventory_control_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupProductRoutes sets up the catalog routes.
func SetupProductRoutes(api *gin.RouterGroup, h *handlers.ProductHandler, maxUpload int64) {
	productRoutes := api.Group("/products")
	{
		productRoutes.GET("", h.ListProducts)
		productRoutes.GET("/export", h.ExportProducts)
		productRoutes.GET("/backups", h.ListBackups)
		productRoutes.GET("/:product_number", h.GetProduct)
		productRoutes.POST("/add", h.AddProduct)
		productRoutes.POST("/update", h.UpdateProduct)
		productRoutes.POST("/delete", h.DeleteProduct)
		productRoutes.POST("/reorder", h.ReorderProducts)
		productRoutes.POST("/update-case-count", h.UpdateCaseCount)
		productRoutes.POST("/upload", middleware.LimitBody(maxUpload), h.UploadProducts)
	}
}

// SetupInventoryRoutes sets up count routes and the location index.
func SetupInventoryRoutes(api *gin.RouterGroup, h *handlers.InventoryHandler, maxUpload int64) {
	inventoryRoutes := api.Group("/inventory")
	{
		inventoryRoutes.POST("/save", h.SaveCount)
		inventoryRoutes.POST("/upload", middleware.LimitBody(maxUpload), h.UploadCount)
		inventoryRoutes.GET("/export/:location/:date", h.ExportCount)
		inventoryRoutes.GET("/:location/:date", h.GetCount)
		inventoryRoutes.DELETE("/:location/:date", h.DeleteCount)
	}
	api.GET("/locations", h.ListLocations)
}

// SetupOrderRoutes sets up order estimate, invoice upload, delivery and official order routes.
func SetupOrderRoutes(api *gin.RouterGroup, h *handlers.OrderHandler, maxUpload int64) {
	orderRoutes := api.Group("/orders")
	{
		orderRoutes.POST("/upload", middleware.LimitBody(maxUpload), h.UploadOrders)
		orderRoutes.POST("/upload-invoice", middleware.LimitBody(maxUpload), h.UploadInvoice)
		orderRoutes.POST("/calculate", h.CalculateOfficialOrder)
		orderRoutes.GET("/:location/:date", h.GetOrders)
	}
	api.GET("/deliveries/:location/:date", h.GetDeliveries)
}

// SetupInvoiceRoutes sets up the import log routes.
func SetupInvoiceRoutes(api *gin.RouterGroup, h *handlers.InvoiceHandler) {
	invoiceRoutes := api.Group("/invoices")
	{
		invoiceRoutes.GET("/import-log", h.GetImportLog)
		invoiceRoutes.DELETE("/import/:import_id", h.ReverseImport)
	}
}

// SetupReportRoutes sets up the report routes.
func SetupReportRoutes(api *gin.RouterGroup, h *handlers.ReportHandler) {
	reportRoutes := api.Group("/reports")
	{
		reportRoutes.GET("/product-activity", h.GetProductActivity)
		reportRoutes.GET("/product-activity/export", h.ExportProductActivity)
	}
}
