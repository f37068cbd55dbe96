package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/fulfillment"
	"github.com/fekuna/omnipos-stock-service/internal/fulfillment/dto"
	"github.com/fekuna/omnipos-stock-service/internal/response"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type FulfillmentHandler struct {
	uc     fulfillment.UseCase
	logger logger.ZapLogger
}

func NewFulfillmentHandler(uc fulfillment.UseCase, log logger.ZapLogger) *FulfillmentHandler {
	return &FulfillmentHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *FulfillmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	f := rg.Group("/fulfillments/:requestId", auth.Require(auth.ActionFulfill))
	f.POST("", h.Start)
	f.GET("", h.Get)
	f.POST("/scan", h.Scan)
	f.POST("/confirm", h.Confirm)
	f.POST("/ship", h.Ship)
	f.DELETE("", h.Abandon)
}

func (h *FulfillmentHandler) Start(c *gin.Context) {
	s, err := h.uc.Start(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		response.Error(c, h.logger, "Failed to start fulfillment", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *FulfillmentHandler) Get(c *gin.Context) {
	s, err := h.uc.Get(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		response.Error(c, h.logger, "Failed to fetch fulfillment", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *FulfillmentHandler) Scan(c *gin.Context) {
	var input dto.ScanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "barcode is required")
		return
	}

	result, err := h.uc.Scan(c.Request.Context(), c.Param("requestId"), input.Barcode)
	if err != nil {
		response.Error(c, h.logger, "Failed to scan item", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FulfillmentHandler) Confirm(c *gin.Context) {
	var input dto.ConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "itemId and quantity are required")
		return
	}

	s, err := h.uc.Confirm(c.Request.Context(), c.Param("requestId"), &input)
	if err != nil {
		response.Error(c, h.logger, "Failed to confirm quantity", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *FulfillmentHandler) Ship(c *gin.Context) {
	req, err := h.uc.Ship(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		response.Error(c, h.logger, "Failed to ship request", err)
		return
	}
	response.Success(c, gin.H{"request": req})
}

func (h *FulfillmentHandler) Abandon(c *gin.Context) {
	if err := h.uc.Abandon(c.Request.Context(), c.Param("requestId")); err != nil {
		response.Error(c, h.logger, "Failed to abandon fulfillment", err)
		return
	}
	response.Success(c, nil)
}
