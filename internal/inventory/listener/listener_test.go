package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader hands out queued messages, then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	errs      []error
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.msgs) > 0 {
		msg := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.committed))
	for _, m := range r.committed {
		out = append(out, m.Offset)
	}
	return out
}

// receiver records Receive calls. The other inventory operations are not
// reached by the listener. Errors queued in fail are returned first.
type receiver struct {
	mu     sync.Mutex
	inputs []*dto.ReceiveInput
	fail   []error
	done   chan struct{}
}

func (r *receiver) GetInventory(context.Context) ([]model.InventoryRow, error) { return nil, nil }
func (r *receiver) AddStock(context.Context, *dto.AddStockInput) error         { return nil }
func (r *receiver) Decrement(context.Context, string, int) error               { return nil }
func (r *receiver) DeleteProduct(context.Context, string) error                { return nil }
func (r *receiver) CreateProduct(context.Context, *dto.CreateProductInput) (*model.StockItem, error) {
	return nil, nil
}

func (r *receiver) Receive(_ context.Context, input *dto.ReceiveInput) (*dto.ReceiveResult, error) {
	r.mu.Lock()
	r.inputs = append(r.inputs, input)
	if len(r.fail) > 0 {
		err := r.fail[0]
		r.fail = r.fail[1:]
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()
	r.done <- struct{}{}
	return &dto.ReceiveResult{Applied: len(input.Lines)}, nil
}

func (r *receiver) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inputs)
}

func encode(t *testing.T, offset int64, event StockReceivedEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

// run starts l and stops it once uc has booked a receipt.
func run(t *testing.T, l *ReceiptListener, uc *receiver) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(stopped)
	}()

	select {
	case <-uc.done:
	case <-time.After(2 * time.Second):
		cancel()
		<-stopped
		t.Fatal("receipt was not booked")
	}
	cancel()
	<-stopped
}

func TestReceiptListener_BooksStockReceived(t *testing.T) {
	reader := &fakeReader{
		errs: []error{errors.New("broker unavailable")},
		msgs: []kafka.Message{
			{Offset: 1, Value: []byte("not json")},
			encode(t, 2, StockReceivedEvent{EventID: "e0", EventType: "PriceChanged"}),
			encode(t, 3, StockReceivedEvent{
				EventID:   "e1",
				EventType: EventStockReceived,
				Payload: ReceiptPayload{
					Reference: "ASN-1",
					Items: []ReceiptItemPayload{
						{Barcode: "111", Quantity: 5},
						{ItemID: "widget", Quantity: 2},
					},
				},
				Timestamp: time.Now().UTC(),
			}),
		},
	}
	uc := &receiver{done: make(chan struct{}, 1)}

	l := NewReceiptListener(reader, uc, logger.NewNop())
	l.retryDelay = time.Millisecond
	run(t, l, uc)

	require.Len(t, uc.inputs, 1)
	in := uc.inputs[0]
	assert.Equal(t, "ASN-1", in.Reference)
	assert.True(t, in.SkipInvalid)
	assert.Equal(t, []dto.ReceiveLine{
		{Barcode: "111", Quantity: 5},
		{ItemID: "widget", Quantity: 2},
	}, in.Lines)
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]int64{1, 2, 3}, reader.committedOffsets())
	}, time.Second, time.Millisecond)
}

func TestReceiptListener_RetriesTransientFailure(t *testing.T) {
	reader := &fakeReader{
		msgs: []kafka.Message{
			encode(t, 7, StockReceivedEvent{
				EventID:   "e9",
				EventType: EventStockReceived,
				Payload: ReceiptPayload{
					Reference: "ASN-9",
					Items:     []ReceiptItemPayload{{Barcode: "111", Quantity: 4}},
				},
			}),
		},
	}
	uc := &receiver{
		fail: []error{errors.New("database is locked")},
		done: make(chan struct{}, 1),
	}

	l := NewReceiptListener(reader, uc, logger.NewNop())
	l.retryDelay = time.Millisecond
	run(t, l, uc)

	assert.Equal(t, 2, uc.calls())
	assert.Equal(t, "ASN-9", uc.inputs[1].Reference)
	assert.Equal(t, []int64{7}, reader.committedOffsets())
}

func TestReceiptListener_CommitsUnbookableReceipt(t *testing.T) {
	reader := &fakeReader{
		msgs: []kafka.Message{
			encode(t, 1, StockReceivedEvent{EventID: "e1", EventType: EventStockReceived}),
			encode(t, 2, StockReceivedEvent{
				EventID:   "e2",
				EventType: EventStockReceived,
				Payload: ReceiptPayload{
					Reference: "ASN-2",
					Items:     []ReceiptItemPayload{{ItemID: "widget", Quantity: 1}},
				},
			}),
		},
	}
	uc := &receiver{
		fail: []error{fmt.Errorf("%w: receipt has no lines", model.ErrValidation)},
		done: make(chan struct{}, 1),
	}

	l := NewReceiptListener(reader, uc, logger.NewNop())
	l.retryDelay = time.Millisecond
	run(t, l, uc)

	// The empty receipt is not retried; the next one is booked.
	require.Equal(t, 2, uc.calls())
	assert.Equal(t, "ASN-2", uc.inputs[1].Reference)
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]int64{1, 2}, reader.committedOffsets())
	}, time.Second, time.Millisecond)
}
