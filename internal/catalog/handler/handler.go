package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/catalog"
	"github.com/fekuna/omnipos-stock-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-stock-service/internal/response"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/stock-items")
	items.GET("", auth.Require(auth.ActionViewCatalog), h.ListItems)
	items.POST("", auth.Require(auth.ActionManageCatalog), h.CreateItem)
	items.GET("/barcode", auth.Require(auth.ActionViewCatalog), h.GetItemByBarcode)
	items.GET("/search", auth.Require(auth.ActionViewCatalog), h.SearchItems)
}

func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.uc.ListItems(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, "Failed to fetch stock items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var input dto.CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "name and sku are required")
		return
	}

	item, err := h.uc.CreateItem(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, "Failed to create stock item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) GetItemByBarcode(c *gin.Context) {
	barcode := strings.TrimSpace(c.Query("barcode"))
	if barcode == "" {
		response.BadRequest(c, "Barcode parameter is required")
		return
	}

	item, err := h.uc.GetItemByBarcode(c.Request.Context(), barcode)
	if err != nil {
		response.Error(c, h.logger, "Failed to fetch item", err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found for this barcode"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) SearchItems(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := h.uc.SearchItems(c.Request.Context(), &dto.SearchFilters{
		Query: c.Query("q"),
		Limit: limit,
	})
	if err != nil {
		response.Error(c, h.logger, "Failed to search stock items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}
