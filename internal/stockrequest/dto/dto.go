package dto

import "github.com/fekuna/omnipos-stock-service/internal/model"

type RequestFilters struct {
	Status        model.RequestStatus
	StoreLocation string
	UserID        string
}

type ItemLine struct {
	ItemID            string `json:"itemId"`
	RequestedQuantity int    `json:"requestedQuantity"`
}

type CreateRequestInput struct {
	StoreLocation string     `json:"storeLocation"`
	Comments      string     `json:"comments"`
	Items         []ItemLine `json:"items"`
}

// UpdateRequestInput edits a pending request. Nil fields are left unchanged.
type UpdateRequestInput struct {
	Items         []ItemLine `json:"items"`
	Comments      *string    `json:"comments"`
	StoreLocation *string    `json:"storeLocation"`
}

type TransitionOptions struct {
	RejectionReason string `json:"rejectionReason"`
	WarehouseNotes  string `json:"warehouseNotes"`
	// Items, when set on accept, replaces the request lines before the
	// ledger is decremented.
	Items []ItemLine `json:"items"`
}

// ActionRequest is the body of POST /stock-requests.
type ActionRequest struct {
	Action    string              `json:"action"`
	Request   *CreateRequestInput `json:"request"`
	RequestID string              `json:"requestId"`
	Updates   *UpdateRequestInput `json:"updates"`
	Status    model.RequestStatus `json:"status"`
	Options   *TransitionOptions  `json:"options"`
}
