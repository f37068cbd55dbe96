package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/stockrequest"
	"github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fekuna/omnipos-stock-service/internal/stockrequest"

type stockRequestUseCase struct {
	repo        stockrequest.Repository
	items       stockrequest.ItemFinder
	ledger      stockrequest.Ledger
	tx          database.Transactor
	logger      logger.ZapLogger
	tracer      trace.Tracer
	transitions metric.Int64Counter
	now         func() time.Time
}

func NewStockRequestUseCase(
	repo stockrequest.Repository,
	items stockrequest.ItemFinder,
	ledger stockrequest.Ledger,
	tx database.Transactor,
	log logger.ZapLogger,
) stockrequest.UseCase {
	transitions, err := otel.Meter(instrumentationName).Int64Counter(
		"stock_request.transitions",
		metric.WithDescription("Stock request status transitions"),
	)
	if err != nil {
		log.Warn("failed to create transition counter", zap.Error(err))
	}

	return &stockRequestUseCase{
		repo:        repo,
		items:       items,
		ledger:      ledger,
		tx:          tx,
		logger:      log,
		tracer:      otel.Tracer(instrumentationName),
		transitions: transitions,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *stockRequestUseCase) CreateRequest(ctx context.Context, input *dto.CreateRequestInput) (*model.StockRequest, error) {
	actor := auth.ActorFromContext(ctx)

	storeLocation := strings.TrimSpace(input.StoreLocation)
	if storeLocation == "" && actor != nil && actor.Role == model.RoleStoreManager {
		storeLocation = actor.StoreLocation
	}
	if err := auth.Authorize(actor, auth.ActionCreateRequest, storeLocation); err != nil {
		return nil, err
	}
	if storeLocation == "" {
		return nil, fmt.Errorf("%w: store location is required", model.ErrValidation)
	}

	items, err := uc.normalizeItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	req := &model.StockRequest{
		ID:            uuid.New().String(),
		StoreLocation: storeLocation,
		Comments:      input.Comments,
		Status:        model.StatusPending,
		SubmittedAt:   uc.now(),
	}
	if actor.UserID != "" {
		userID := actor.UserID
		req.UserID = &userID
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		number, err := uc.repo.NextRequestNumber(ctx)
		if err != nil {
			return err
		}
		req.RequestNumber = number

		if err := uc.repo.Create(ctx, req); err != nil {
			return fmt.Errorf("create stock request: %w", err)
		}
		return uc.repo.ReplaceItems(ctx, req.ID, items)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock request created",
		zap.String("request_id", req.ID),
		zap.Int("request_number", req.RequestNumber),
		zap.String("store_location", req.StoreLocation),
		zap.Int("lines", len(items)),
	)
	return uc.find(ctx, req.ID)
}

func (uc *stockRequestUseCase) UpdateRequest(ctx context.Context, id string, input *dto.UpdateRequestInput) (*model.StockRequest, error) {
	actor := auth.ActorFromContext(ctx)

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := uc.find(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.Authorize(actor, auth.ActionEditRequest, req.StoreLocation); err != nil {
			return err
		}
		if req.Status != model.StatusPending {
			return fmt.Errorf("%w: request %d is %s and can no longer be edited",
				model.ErrIllegalTransition, req.RequestNumber, req.Status)
		}

		if input.Comments != nil {
			req.Comments = *input.Comments
		}
		if input.StoreLocation != nil {
			location := strings.TrimSpace(*input.StoreLocation)
			if location == "" {
				return fmt.Errorf("%w: store location is required", model.ErrValidation)
			}
			if err := auth.Authorize(actor, auth.ActionEditRequest, location); err != nil {
				return err
			}
			req.StoreLocation = location
		}

		// Locks the row against a concurrent transition.
		ok, err := uc.repo.UpdatePending(ctx, req)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: request %d is no longer pending", model.ErrIllegalTransition, req.RequestNumber)
		}

		if input.Items != nil {
			items, err := uc.normalizeItems(ctx, input.Items)
			if err != nil {
				return err
			}
			if err := uc.repo.ReplaceItems(ctx, req.ID, items); err != nil {
				return fmt.Errorf("replace request items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock request updated", zap.String("request_id", id))
	return uc.find(ctx, id)
}

func (uc *stockRequestUseCase) TransitionStatus(ctx context.Context, id string, status model.RequestStatus, opts *dto.TransitionOptions) (_ *model.StockRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "stockrequest.TransitionStatus", trace.WithAttributes(
		attribute.String("request.id", id),
		attribute.String("request.status", string(status)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if opts == nil {
		opts = &dto.TransitionOptions{}
	}

	action, err := transitionAction(status)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(opts.RejectionReason)
	if status == model.StatusRejected && reason == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", model.ErrValidation)
	}

	actor := auth.ActorFromContext(ctx)
	var from model.RequestStatus

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := uc.find(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.Authorize(actor, action, req.StoreLocation); err != nil {
			return err
		}
		if !req.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", model.ErrIllegalTransition, req.Status, status)
		}

		from = req.Status
		now := uc.now()
		req.Status = status

		switch status {
		case model.StatusAccepted:
			req.ProcessedAt = &now
			req.ProcessedBy = actorID(actor)
			if notes := strings.TrimSpace(opts.WarehouseNotes); notes != "" {
				req.WarehouseNotes = &notes
			}
		case model.StatusRejected:
			req.RejectedAt = &now
			req.ProcessedBy = actorID(actor)
			req.RejectionReason = &reason
		case model.StatusCancelled:
			req.CancelledAt = &now
		case model.StatusShipped:
			req.ShippedAt = &now
		}

		// Compare-and-set: a racing transition that already moved the
		// request makes this update match no row.
		ok, err := uc.repo.UpdateStatus(ctx, req, from)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: request %d is no longer %s", model.ErrIllegalTransition, req.RequestNumber, from)
		}

		if status == model.StatusAccepted {
			return uc.applyAcceptance(ctx, req, opts.Items)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.transitions != nil {
		uc.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", string(from)),
			attribute.String("to", string(status)),
		))
	}
	uc.logger.Info("stock request status changed",
		zap.String("request_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
		zap.String("actor", auth.GetUserID(ctx)),
	)
	return uc.find(ctx, id)
}

// applyAcceptance replaces the lines when the warehouse modified them, then
// takes every line's quantity out of the ledger.
func (uc *stockRequestUseCase) applyAcceptance(ctx context.Context, req *model.StockRequest, modified []dto.ItemLine) error {
	if modified != nil {
		items, err := uc.normalizeItems(ctx, modified)
		if err != nil {
			return err
		}
		if err := uc.repo.ReplaceItems(ctx, req.ID, items); err != nil {
			return fmt.Errorf("replace request items: %w", err)
		}
	}

	lines, err := uc.repo.FindItems(ctx, req.ID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := uc.ledger.Decrement(ctx, line.ItemID, line.RequestedQuantity); err != nil {
			return fmt.Errorf("decrement inventory for %s: %w", line.ItemID, err)
		}
	}
	return nil
}

func (uc *stockRequestUseCase) AcceptWithModifications(ctx context.Context, id string, items []dto.ItemLine, warehouseNotes string) (*model.StockRequest, error) {
	if items == nil {
		items = []dto.ItemLine{}
	}
	return uc.TransitionStatus(ctx, id, model.StatusAccepted, &dto.TransitionOptions{
		Items:          items,
		WarehouseNotes: warehouseNotes,
	})
}

func (uc *stockRequestUseCase) MarkShipped(ctx context.Context, id string) (*model.StockRequest, error) {
	return uc.TransitionStatus(ctx, id, model.StatusShipped, nil)
}

// DeleteRequest removes a request in any state. The ledger is not touched.
func (uc *stockRequestUseCase) DeleteRequest(ctx context.Context, id string) error {
	if err := auth.Authorize(auth.ActorFromContext(ctx), auth.ActionDeleteRequest, ""); err != nil {
		return err
	}

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := uc.find(ctx, id); err != nil {
			return err
		}
		return uc.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.logger.Info("stock request deleted", zap.String("request_id", id))
	return nil
}

func (uc *stockRequestUseCase) ListRequests(ctx context.Context, filters *dto.RequestFilters) ([]model.StockRequest, error) {
	if filters == nil {
		filters = &dto.RequestFilters{}
	}
	actor := auth.ActorFromContext(ctx)
	if err := auth.Authorize(actor, auth.ActionViewRequests, ""); err != nil {
		return nil, err
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, filters.Status)
	}

	scoped := *filters
	if actor.Role == model.RoleStoreManager {
		scoped.StoreLocation = actor.StoreLocation
	}
	return uc.repo.FindAll(ctx, &scoped)
}

func (uc *stockRequestUseCase) GetRequest(ctx context.Context, id string) (*model.StockRequest, error) {
	req, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(auth.ActorFromContext(ctx), auth.ActionViewRequests, req.StoreLocation); err != nil {
		return nil, err
	}
	return req, nil
}

func (uc *stockRequestUseCase) find(ctx context.Context, id string) (*model.StockRequest, error) {
	req, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: stock request %s", model.ErrNotFound, id)
	}
	return req, nil
}

// normalizeItems drops non-positive lines, merges duplicates and checks that
// every item exists. The result is never empty.
func (uc *stockRequestUseCase) normalizeItems(ctx context.Context, lines []dto.ItemLine) ([]model.RequestItem, error) {
	items := make([]model.RequestItem, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		if line.RequestedQuantity <= 0 {
			continue
		}
		itemID := strings.TrimSpace(line.ItemID)
		if itemID == "" {
			return nil, fmt.Errorf("%w: item id is required", model.ErrValidation)
		}
		if i, ok := index[itemID]; ok {
			items[i].RequestedQuantity += line.RequestedQuantity
			continue
		}

		item, err := uc.items.FindByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("%w: unknown stock item %s", model.ErrValidation, itemID)
		}

		index[itemID] = len(items)
		items = append(items, model.RequestItem{
			ID:                uuid.New().String(),
			ItemID:            itemID,
			RequestedQuantity: line.RequestedQuantity,
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: a request needs at least one item with a positive quantity", model.ErrValidation)
	}
	return items, nil
}

func transitionAction(status model.RequestStatus) (auth.Action, error) {
	switch status {
	case model.StatusAccepted:
		return auth.ActionAcceptRequest, nil
	case model.StatusRejected:
		return auth.ActionRejectRequest, nil
	case model.StatusCancelled:
		return auth.ActionCancelRequest, nil
	case model.StatusShipped:
		return auth.ActionShipRequest, nil
	case model.StatusPending:
		return "", fmt.Errorf("%w: pending requests are edited with update, not moved back to pending", model.ErrIllegalTransition)
	default:
		return "", fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
}

func actorID(a *auth.Actor) *string {
	if a == nil || a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}
