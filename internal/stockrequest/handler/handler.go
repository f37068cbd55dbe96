package handler

import (
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/response"
	"github.com/fekuna/omnipos-stock-service/internal/stockrequest"
	"github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type StockRequestHandler struct {
	uc     stockrequest.UseCase
	logger logger.ZapLogger
}

func NewStockRequestHandler(uc stockrequest.UseCase, log logger.ZapLogger) *StockRequestHandler {
	return &StockRequestHandler{
		uc:     uc,
		logger: log,
	}
}

// RegisterRoutes mounts the request routes. Authorization depends on the
// request's store, so it happens in the use case.
func (h *StockRequestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/stock-requests")
	requests.GET("", h.ListRequests)
	requests.GET("/:id", h.GetRequest)
	requests.POST("", h.HandleAction)
}

func (h *StockRequestHandler) ListRequests(c *gin.Context) {
	filters := &dto.RequestFilters{
		Status:        model.RequestStatus(strings.TrimSpace(c.Query("status"))),
		StoreLocation: strings.TrimSpace(c.Query("storeLocation")),
	}

	requests, err := h.uc.ListRequests(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, "Failed to fetch stock requests", err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *StockRequestHandler) GetRequest(c *gin.Context) {
	req, err := h.uc.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, "Failed to fetch stock request", err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *StockRequestHandler) HandleAction(c *gin.Context) {
	var body dto.ActionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	ctx := c.Request.Context()

	const failed = "Failed to process stock request action"

	switch body.Action {
	case "create":
		if body.Request == nil {
			response.BadRequest(c, "request is required")
			return
		}
		req, err := h.uc.CreateRequest(ctx, body.Request)
		if err != nil {
			response.Error(c, h.logger, failed, err)
			return
		}
		response.Success(c, gin.H{"request": req})

	case "update":
		if body.RequestID == "" || body.Updates == nil {
			response.BadRequest(c, "requestId and updates are required")
			return
		}
		req, err := h.uc.UpdateRequest(ctx, body.RequestID, body.Updates)
		if err != nil {
			response.Error(c, h.logger, failed, err)
			return
		}
		response.Success(c, gin.H{"request": req})

	case "updateStatus":
		if body.RequestID == "" || body.Status == "" {
			response.BadRequest(c, "requestId and status are required")
			return
		}
		req, err := h.uc.TransitionStatus(ctx, body.RequestID, body.Status, body.Options)
		if err != nil {
			response.Error(c, h.logger, failed, err)
			return
		}
		response.Success(c, gin.H{"request": req})

	case "delete":
		if body.RequestID == "" {
			response.BadRequest(c, "requestId is required")
			return
		}
		if err := h.uc.DeleteRequest(ctx, body.RequestID); err != nil {
			response.Error(c, h.logger, failed, err)
			return
		}
		response.Success(c, nil)

	default:
		response.BadRequest(c, "Invalid action")
	}
}
