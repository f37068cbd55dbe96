package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/fulfillment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	missing, err := m.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	s := &fulfillment.Session{
		RequestID: "req-1",
		Lines:     []fulfillment.Line{{ItemID: "a", RequestedQty: 2}},
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, m.Save(ctx, s))

	got, err := m.Get(ctx, "req-1")
	require.NoError(t, err)
	got.Lines[0].FulfilledQty = 2

	again, err := m.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Zero(t, again.Lines[0].FulfilledQty)

	require.NoError(t, m.Delete(ctx, "req-1"))
	gone, err := m.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemoryStore_LockSerialises(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(ctx, "req-1")
			require.NoError(t, err)
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, m.locks)
}

func TestMemoryStore_LockReleasedAfterDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	for _, id := range []string{"req-1", "req-2", "req-3"} {
		unlock, err := m.Lock(ctx, id)
		require.NoError(t, err)
		require.NoError(t, m.Save(ctx, &fulfillment.Session{RequestID: id}))
		require.NoError(t, m.Delete(ctx, id))
		unlock()
	}
	assert.Empty(t, m.locks)
	assert.Empty(t, m.sessions)

	// The lock still excludes a second holder after its entry was recreated.
	unlock, err := m.Lock(ctx, "req-1")
	require.NoError(t, err)
	acquired := make(chan struct{})
	go func() {
		again, err := m.Lock(ctx, "req-1")
		if err == nil {
			close(acquired)
			again()
		}
	}()
	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was not handed over")
	}
}
