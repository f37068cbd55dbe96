package dto

import "github.com/fekuna/omnipos-stock-service/internal/model"

type ScanInput struct {
	Barcode string `json:"barcode" binding:"required"`
}

type ConfirmInput struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

type ScanResult struct {
	Item         *model.StockItem `json:"item"`
	RequestedQty int              `json:"requestedQty"`
	FulfilledQty int              `json:"fulfilledQty"`
	SuggestedQty int              `json:"suggestedQty"`
	Status       string           `json:"status"`
}
