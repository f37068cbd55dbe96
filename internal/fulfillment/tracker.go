package fulfillment

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type LineStatus string

const (
	LinePending  LineStatus = "pending"
	LinePartial  LineStatus = "partial"
	LineComplete LineStatus = "complete"
)

type Line struct {
	ItemID       string     `json:"itemId"`
	SKU          string     `json:"sku"`
	Name         string     `json:"name"`
	Barcode      string     `json:"barcode,omitempty"`
	RequestedQty int        `json:"requestedQty"`
	FulfilledQty int        `json:"fulfilledQty"`
	Status       LineStatus `json:"status"`
}

// Remaining is never negative; over-picking leaves it at zero.
func (l *Line) Remaining() int {
	if r := l.RequestedQty - l.FulfilledQty; r > 0 {
		return r
	}
	return 0
}

// SuggestedQty is what the operator is offered on scan: the remaining
// quantity, or the full requested quantity once nothing remains.
func (l *Line) SuggestedQty() int {
	if r := l.Remaining(); r > 0 {
		return r
	}
	return l.RequestedQty
}

func (l *Line) refreshStatus() {
	switch {
	case l.FulfilledQty >= l.RequestedQty:
		l.Status = LineComplete
	case l.FulfilledQty > 0:
		l.Status = LinePartial
	default:
		l.Status = LinePending
	}
}

// Session tracks pick and pack progress of one accepted request. It never
// touches the ledger.
type Session struct {
	RequestID     string    `json:"requestId"`
	RequestNumber int       `json:"requestNumber"`
	StoreLocation string    `json:"storeLocation"`
	Lines         []Line    `json:"lines"`
	StartedAt     time.Time `json:"startedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewSession(req *model.StockRequest, now time.Time) *Session {
	s := &Session{
		RequestID:     req.ID,
		RequestNumber: req.RequestNumber,
		StoreLocation: req.StoreLocation,
		Lines:         make([]Line, 0, len(req.Items)),
		StartedAt:     now,
		UpdatedAt:     now,
	}
	for _, item := range req.Items {
		line := Line{
			ItemID:       item.ItemID,
			SKU:          item.SKU,
			Name:         item.Name,
			RequestedQty: item.RequestedQuantity,
		}
		if item.Barcode != nil {
			line.Barcode = *item.Barcode
		}
		line.refreshStatus()
		s.Lines = append(s.Lines, line)
	}
	return s
}

// Line returns the line for itemID, or nil when the item is not part of the request.
func (s *Session) Line(itemID string) *Line {
	for i := range s.Lines {
		if s.Lines[i].ItemID == itemID {
			return &s.Lines[i]
		}
	}
	return nil
}

// Confirm adds quantity to the item's fulfilled count. quantity is operator
// input and has no upper cap.
func (s *Session) Confirm(itemID string, quantity int, now time.Time) (*Line, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: confirmed quantity must be positive", model.ErrValidation)
	}
	line := s.Line(itemID)
	if line == nil {
		return nil, fmt.Errorf("%w: item %s is not part of request %d", model.ErrValidation, itemID, s.RequestNumber)
	}

	line.FulfilledQty += quantity
	line.refreshStatus()
	s.UpdatedAt = now
	return line, nil
}

func (s *Session) CanShip() bool {
	for i := range s.Lines {
		if s.Lines[i].Status != LineComplete {
			return false
		}
	}
	return true
}

// Progress returns how many lines are complete out of the total.
func (s *Session) Progress() (complete, total int) {
	for i := range s.Lines {
		if s.Lines[i].Status == LineComplete {
			complete++
		}
	}
	return complete, len(s.Lines)
}
