package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/fulfillment"
	"github.com/fekuna/omnipos-stock-service/internal/fulfillment/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"go.uber.org/zap"
)

type fulfillmentUseCase struct {
	requests fulfillment.Requests
	items    fulfillment.BarcodeFinder
	store    fulfillment.Store
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewFulfillmentUseCase(requests fulfillment.Requests, items fulfillment.BarcodeFinder, store fulfillment.Store, log logger.ZapLogger) fulfillment.UseCase {
	return &fulfillmentUseCase{
		requests: requests,
		items:    items,
		store:    store,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a session for an accepted request. Starting twice returns the
// session already in progress. A session left over from a request that has
// since been shipped, rejected or deleted is discarded.
func (uc *fulfillmentUseCase) Start(ctx context.Context, requestID string) (*fulfillment.Session, error) {
	unlock, err := uc.store.Lock(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	req, err := uc.requests.GetRequest(ctx, requestID)
	if errors.Is(err, model.ErrNotFound) {
		uc.discard(ctx, requestID)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if req.Status != model.StatusAccepted {
		uc.discard(ctx, requestID)
		return nil, fmt.Errorf("%w: request %d is %s, only accepted requests can be fulfilled",
			model.ErrIllegalTransition, req.RequestNumber, req.Status)
	}

	existing, err := uc.store.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	s := fulfillment.NewSession(req, uc.now())
	if err := uc.store.Save(ctx, s); err != nil {
		return nil, err
	}

	uc.logger.Info("fulfillment started",
		zap.String("request_id", requestID),
		zap.Int("request_number", req.RequestNumber),
		zap.Int("lines", len(s.Lines)),
	)
	return s, nil
}

func (uc *fulfillmentUseCase) Get(ctx context.Context, requestID string) (*fulfillment.Session, error) {
	return uc.session(ctx, requestID)
}

// Scan resolves barcode and reports the item's progress. It never changes
// the session.
func (uc *fulfillmentUseCase) Scan(ctx context.Context, requestID, barcode string) (*dto.ScanResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", model.ErrValidation)
	}

	s, err := uc.session(ctx, requestID)
	if err != nil {
		return nil, err
	}

	item, err := uc.items.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: no product for barcode %s", model.ErrNotFound, barcode)
	}

	line := s.Line(item.ID)
	if line == nil {
		return nil, fmt.Errorf("%w: %s is not part of request %d", model.ErrValidation, item.Name, s.RequestNumber)
	}

	return &dto.ScanResult{
		Item:         item,
		RequestedQty: line.RequestedQty,
		FulfilledQty: line.FulfilledQty,
		SuggestedQty: line.SuggestedQty(),
		Status:       string(line.Status),
	}, nil
}

func (uc *fulfillmentUseCase) Confirm(ctx context.Context, requestID string, input *dto.ConfirmInput) (*fulfillment.Session, error) {
	unlock, err := uc.store.Lock(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := uc.session(ctx, requestID)
	if err != nil {
		return nil, err
	}

	line, err := s.Confirm(input.ItemID, input.Quantity, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, s); err != nil {
		return nil, err
	}

	uc.logger.Debug("fulfillment confirmed",
		zap.String("request_id", requestID),
		zap.String("item_id", line.ItemID),
		zap.Int("fulfilled", line.FulfilledQty),
		zap.Int("requested", line.RequestedQty),
	)
	return s, nil
}

// Ship marks the request shipped once every line is complete and closes the session.
func (uc *fulfillmentUseCase) Ship(ctx context.Context, requestID string) (*model.StockRequest, error) {
	unlock, err := uc.store.Lock(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := uc.session(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !s.CanShip() {
		complete, total := s.Progress()
		return nil, fmt.Errorf("%w: only %d of %d items are complete", model.ErrConflict, complete, total)
	}

	req, err := uc.requests.MarkShipped(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Delete(ctx, requestID); err != nil {
		uc.logger.Warn("failed to remove fulfillment session", zap.String("request_id", requestID), zap.Error(err))
	}

	uc.logger.Info("fulfillment shipped", zap.String("request_id", requestID), zap.Int("request_number", req.RequestNumber))
	return req, nil
}

func (uc *fulfillmentUseCase) Abandon(ctx context.Context, requestID string) error {
	if _, err := uc.session(ctx, requestID); err != nil {
		return err
	}
	return uc.store.Delete(ctx, requestID)
}

func (uc *fulfillmentUseCase) discard(ctx context.Context, requestID string) {
	if err := uc.store.Delete(ctx, requestID); err != nil {
		uc.logger.Warn("failed to remove stale fulfillment session", zap.String("request_id", requestID), zap.Error(err))
	}
}

func (uc *fulfillmentUseCase) session(ctx context.Context, requestID string) (*fulfillment.Session, error) {
	s, err := uc.store.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: no fulfillment in progress for request %s", model.ErrNotFound, requestID)
	}
	return s, nil
}
