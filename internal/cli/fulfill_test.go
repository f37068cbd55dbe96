package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	reqDTO "github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	lines   []string
	prompts []string
}

func (r *scriptedReader) SetPrompt(p string) {
	r.prompts = append(r.prompts, p)
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func TestFulfiller_ScanConfirmShip(t *testing.T) {
	srv, db := newServer(t)
	ctx := context.Background()
	warehouse, _ := testutil.SeedUser(t, db, model.RoleWarehouseManager, "")
	store, _ := testutil.SeedUser(t, db, model.RoleStoreManager, "Sydney")
	widget := testutil.SeedItem(t, db, "Widget", "W-1", "111", 50)
	gadget := testutil.SeedItem(t, db, "Gadget", "G-1", "222", 50)

	req, err := NewClient(srv.URL, store.ID).CreateRequest(ctx, reqDTO.CreateRequestInput{
		Items: []reqDTO.ItemLine{
			{ItemID: widget.ID, RequestedQuantity: 30},
			{ItemID: gadget.ID, RequestedQuantity: 2},
		},
	})
	require.NoError(t, err)

	client := NewClient(srv.URL, warehouse.ID)
	_, err = client.UpdateStatus(ctx, req.ID, model.StatusAccepted, nil)
	require.NoError(t, err)

	in := &scriptedReader{lines: []string{
		"",
		"999",     // unknown barcode
		"ship",    // not complete yet
		"111", "", // accept suggested 30
		"222", "abc", // bad quantity
		"222", "2",
		"ship",
	}}
	var out bytes.Buffer

	require.NoError(t, NewFulfiller(client, in, &out).Run(ctx, req.ID))

	text := out.String()
	assert.Contains(t, text, "Error: 404")
	assert.Contains(t, text, "Error: 409")
	assert.Contains(t, text, `invalid quantity "abc"`)
	assert.Contains(t, text, "All items complete")
	assert.Contains(t, text, "Request #1 shipped")
	assert.Contains(t, in.prompts, "quantity [30]> ")
	assert.Contains(t, in.prompts, "quantity [2]> ")
	assert.Equal(t, 20, testutil.Available(t, db, widget.ID))
}

func TestFulfiller_ExitLeavesSessionOpen(t *testing.T) {
	srv, db := newServer(t)
	ctx := context.Background()
	warehouse, _ := testutil.SeedUser(t, db, model.RoleWarehouseManager, "")
	store, _ := testutil.SeedUser(t, db, model.RoleStoreManager, "Sydney")
	widget := testutil.SeedItem(t, db, "Widget", "W-1", "111", 50)

	req, err := NewClient(srv.URL, store.ID).CreateRequest(ctx, reqDTO.CreateRequestInput{
		Items: []reqDTO.ItemLine{{ItemID: widget.ID, RequestedQuantity: 3}},
	})
	require.NoError(t, err)
	client := NewClient(srv.URL, warehouse.ID)
	_, err = client.UpdateStatus(ctx, req.ID, model.StatusAccepted, nil)
	require.NoError(t, err)

	in := &scriptedReader{lines: []string{"111", "1", "exit"}}
	require.NoError(t, NewFulfiller(client, in, io.Discard).Run(ctx, req.ID))

	s, err := client.StartFulfillment(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Lines[0].FulfilledQty)
}

func TestFulfiller_PendingRequestFails(t *testing.T) {
	srv, db := newServer(t)
	ctx := context.Background()
	warehouse, _ := testutil.SeedUser(t, db, model.RoleWarehouseManager, "")
	store, _ := testutil.SeedUser(t, db, model.RoleStoreManager, "Sydney")
	widget := testutil.SeedItem(t, db, "Widget", "W-1", "111", 50)

	req, err := NewClient(srv.URL, store.ID).CreateRequest(ctx, reqDTO.CreateRequestInput{
		Items: []reqDTO.ItemLine{{ItemID: widget.ID, RequestedQuantity: 3}},
	})
	require.NoError(t, err)

	err = NewFulfiller(NewClient(srv.URL, warehouse.ID), &scriptedReader{}, io.Discard).Run(ctx, req.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
}
