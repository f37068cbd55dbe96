package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventStockReceived = "StockReceived"

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type ReceiptListener struct {
	consumer   MessageReader
	uc         inventory.UseCase
	logger     logger.ZapLogger
	retryDelay time.Duration
}

func NewReceiptListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *ReceiptListener {
	return &ReceiptListener{
		consumer:   consumer,
		uc:         uc,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Start consumes until ctx is done. A message is committed only once it has
// been booked or found unbookable, so a failed receipt is redelivered.
func (l *ReceiptListener) Start(ctx context.Context) {
	l.logger.Info("Starting goods receipt Kafka listener")
	for {
		msg, err := l.consumer.FetchMessage(ctx)
		if err != nil {
			// Don't log context canceled error as error
			if ctx.Err() != nil {
				l.logger.Info("Stopping goods receipt Kafka listener")
				return
			}
			l.logger.Error("Failed to fetch kafka message", zap.Error(err))
			if !l.wait(ctx) {
				return
			}
			continue
		}

		for {
			err := l.processMessage(ctx, msg.Value)
			if err == nil {
				break
			}
			l.logger.Error("Failed to book goods receipt, retrying",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			if !l.wait(ctx) {
				return
			}
		}

		if err := l.consumer.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("Failed to commit kafka message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (l *ReceiptListener) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(l.retryDelay):
		return true
	}
}

type StockReceivedEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   ReceiptPayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type ReceiptPayload struct {
	Reference string               `json:"reference"`
	Items     []ReceiptItemPayload `json:"items"`
}

type ReceiptItemPayload struct {
	ItemID   string `json:"item_id"`
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

// processMessage returns an error only when the receipt should be retried.
// Malformed events and receipts with nothing bookable are dropped.
func (l *ReceiptListener) processMessage(ctx context.Context, value []byte) error {
	var event StockReceivedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return nil
	}

	if event.EventType != EventStockReceived {
		return nil
	}

	l.logger.Info("Processing StockReceived event",
		zap.String("event_id", event.EventID),
		zap.String("reference", event.Payload.Reference),
	)

	lines := make([]dto.ReceiveLine, 0, len(event.Payload.Items))
	for _, item := range event.Payload.Items {
		lines = append(lines, dto.ReceiveLine{
			ItemID:   item.ItemID,
			Barcode:  item.Barcode,
			Quantity: item.Quantity,
		})
	}

	_, err := l.uc.Receive(ctx, &dto.ReceiveInput{
		Reference:   event.Payload.Reference,
		Lines:       lines,
		SkipInvalid: true,
	})
	if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrNotFound) {
		l.logger.Warn("Dropping unbookable goods receipt",
			zap.String("event_id", event.EventID),
			zap.String("reference", event.Payload.Reference),
			zap.Error(err),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("book receipt %s: %w", event.Payload.Reference, err)
	}
	return nil
}
