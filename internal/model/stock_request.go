package model

import "time"

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusShipped   RequestStatus = "shipped"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusShipped, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (s RequestStatus) IsTerminal() bool {
	return s == StatusShipped || s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// pending -> pending is an edit.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusPending || next == StatusAccepted || next == StatusRejected || next == StatusCancelled
	case StatusAccepted:
		return next == StatusShipped
	default:
		return false
	}
}

type StockRequest struct {
	ID              string        `db:"id" json:"id"`
	RequestNumber   int           `db:"request_number" json:"requestNumber"`
	StoreLocation   string        `db:"store_location" json:"storeLocation"`
	Comments        string        `db:"comments" json:"comments"`
	Status          RequestStatus `db:"status" json:"status"`
	SubmittedAt     time.Time     `db:"submitted_at" json:"submittedAt"`
	ProcessedAt     *time.Time    `db:"processed_at" json:"processedAt,omitempty"`
	ShippedAt       *time.Time    `db:"shipped_at" json:"shippedAt,omitempty"`
	RejectedAt      *time.Time    `db:"rejected_at" json:"rejectedAt,omitempty"`
	CancelledAt     *time.Time    `db:"cancelled_at" json:"cancelledAt,omitempty"`
	UserID          *string       `db:"user_id" json:"userId,omitempty"`
	ProcessedBy     *string       `db:"processed_by" json:"processedBy,omitempty"`
	RejectionReason *string       `db:"rejection_reason" json:"rejectionReason,omitempty"`
	WarehouseNotes  *string       `db:"warehouse_notes" json:"warehouseNotes,omitempty"`
	Items           []RequestItem `db:"-" json:"items"` // Loaded separately
}

type RequestItem struct {
	ID                string `db:"id" json:"id"`
	RequestID         string `db:"request_id" json:"requestId"`
	ItemID            string `db:"item_id" json:"itemId"`
	RequestedQuantity int    `db:"requested_quantity" json:"requestedQuantity"`

	// Joined from stock_items
	Name    string  `db:"name" json:"name"`
	SKU     string  `db:"sku" json:"sku"`
	Barcode *string `db:"barcode" json:"barcode"`
}
