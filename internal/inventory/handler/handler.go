package handler

import (
	"fmt"
	"net/http"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/response"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/inventory", auth.Require(auth.ActionViewInventory), h.GetInventory)
	rg.POST("/inventory", auth.Require(auth.ActionManageInventory), h.HandleAction)
}

func (h *InventoryHandler) GetInventory(c *gin.Context) {
	rows, err := h.uc.GetInventory(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, "Failed to fetch inventory", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InventoryHandler) HandleAction(c *gin.Context) {
	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	ctx := c.Request.Context()

	switch req.Action {
	case "addStock":
		err := h.uc.AddStock(ctx, &dto.AddStockInput{ItemID: req.ItemID, Quantity: req.Quantity})
		if err != nil {
			response.Error(c, h.logger, "Failed to process inventory action", err)
			return
		}
		response.Success(c, nil)

	case "createProduct":
		if req.Product == nil {
			response.Error(c, h.logger, "", fmt.Errorf("%w: product is required", model.ErrValidation))
			return
		}
		input := *req.Product
		input.InitialQuantity = req.InitialQuantity
		item, err := h.uc.CreateProduct(ctx, &input)
		if err != nil {
			response.Error(c, h.logger, "Failed to process inventory action", err)
			return
		}
		response.Success(c, gin.H{"item": item})

	case "deleteProduct":
		if err := h.uc.DeleteProduct(ctx, req.ItemID); err != nil {
			response.Error(c, h.logger, "Failed to process inventory action", err)
			return
		}
		response.Success(c, nil)

	case "receive":
		result, err := h.uc.Receive(ctx, &dto.ReceiveInput{Reference: req.Reference, Lines: req.Items})
		if err != nil {
			response.Error(c, h.logger, "Failed to process inventory action", err)
			return
		}
		response.Success(c, gin.H{"applied": result.Applied})

	default:
		response.BadRequest(c, "Invalid action")
	}
}
