package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/repositories"
	"inventory_control_backend/internal/services"
	"inventory_control_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler exposes the catalog.
type ProductHandler struct {
	catalog services.CatalogService
}

func NewProductHandler(cs services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: cs}
}

type addProductRequest struct {
	models.Product
	// 1-based; zero or out of range appends.
	Position int `json:"position"`
}

type updateProductRequest struct {
	ProductNumber string `json:"product_number" binding:"required"`
	models.ProductPatch
}

type productNumberRequest struct {
	ProductNumber string `json:"product_number" binding:"required"`
}

type reorderRequest struct {
	ProductNumbers []string `json:"product_numbers" binding:"required"`
}

type caseCountRequest struct {
	ProductNumber string `json:"product_number" binding:"required"`
	CaseCount     *bool  `json:"case_count" binding:"required"`
}

// ListProducts returns the catalog in display order.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.List())
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	pn := c.Param("product_number")
	p, ok := h.catalog.Get(pn)
	if !ok {
		respondServiceError(c, fmt.Errorf("%w: %s", services.ErrUnknownProduct, pn), "get product")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) AddProduct(c *gin.Context) {
	var req addProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.catalog.Add(req.Product, req.Position)
	if err != nil {
		respondServiceError(c, err, "add product")
		return
	}
	utils.RespondSuccess(c, "Product "+p.ProductNumber+" added.", gin.H{"product": p})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.catalog.Update(strings.TrimSpace(req.ProductNumber), req.ProductPatch)
	if err != nil {
		respondServiceError(c, err, "update product")
		return
	}
	utils.RespondSuccess(c, "Product "+p.ProductNumber+" updated.", gin.H{"product": p})
}

func (h *ProductHandler) UpdateCaseCount(c *gin.Context) {
	var req caseCountRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.catalog.SetCaseCount(strings.TrimSpace(req.ProductNumber), *req.CaseCount)
	if err != nil {
		respondServiceError(c, err, "update case count")
		return
	}
	utils.RespondSuccess(c, "Case count updated for "+p.ProductNumber+".", gin.H{"product": p})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	var req productNumberRequest
	if !bindJSON(c, &req) {
		return
	}
	pn := strings.TrimSpace(req.ProductNumber)
	if err := h.catalog.Delete(pn); err != nil {
		respondServiceError(c, err, "delete product")
		return
	}
	utils.RespondSuccess(c, "Product "+pn+" deleted.", nil)
}

func (h *ProductHandler) ReorderProducts(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.catalog.Reorder(req.ProductNumbers); err != nil {
		respondServiceError(c, err, "reorder products")
		return
	}
	utils.RespondSuccess(c, "Catalog reordered.", nil)
}

// UploadProducts replaces the catalog with an uploaded sheet.
func (h *ProductHandler) UploadProducts(c *gin.Context) {
	table, filename, err := readUpload(c)
	if err != nil {
		respondServiceError(c, err, "upload catalog")
		return
	}
	n, err := h.catalog.ReplaceFromTable(table)
	if err != nil {
		respondServiceError(c, err, "upload catalog")
		return
	}
	utils.RespondSuccess(c, fmt.Sprintf("Catalog replaced with %d products from %s.", n, filename), gin.H{"count": n})
}

func (h *ProductHandler) ExportProducts(c *gin.Context) {
	rows := repositories.CatalogRows(h.catalog.List())
	writeDownload(c, "products", "Products", repositories.CatalogHeaders, rows)
}

func (h *ProductHandler) ListBackups(c *gin.Context) {
	backups, err := h.catalog.ListBackups()
	if err != nil {
		respondServiceError(c, err, "list catalog backups")
		return
	}
	c.JSON(http.StatusOK, backups)
}
