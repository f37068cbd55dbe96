package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/fulfillment"
	fulDTO "github.com/fekuna/omnipos-stock-service/internal/fulfillment/dto"
	invDTO "github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	reqDTO "github.com/fekuna/omnipos-stock-service/internal/stockrequest/dto"
	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the stock service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success bool                `json:"success"`
	Request *model.StockRequest `json:"request,omitempty"`
	Item    *model.StockItem    `json:"item,omitempty"`
	Applied int                 `json:"applied,omitempty"`
}

// Client talks to the stock service HTTP API as one user.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, userID string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader(auth.HeaderUserID, userID).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	return &Client{http: c}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.http.R().SetContext(ctx).SetError(&errorBody{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		msg := resp.Status()
		if e, ok := resp.Error().(*errorBody); ok && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return nil
}

func (c *Client) Inventory(ctx context.Context) ([]model.InventoryRow, error) {
	var rows []model.InventoryRow
	err := c.do(ctx, http.MethodGet, "/inventory", nil, &rows)
	return rows, err
}

func (c *Client) AddStock(ctx context.Context, itemID string, quantity int) error {
	return c.do(ctx, http.MethodPost, "/inventory", invDTO.ActionRequest{
		Action: "addStock", ItemID: itemID, Quantity: quantity,
	}, nil)
}

func (c *Client) CreateProduct(ctx context.Context, product invDTO.CreateProductInput, initial int) (*model.StockItem, error) {
	var out successBody
	err := c.do(ctx, http.MethodPost, "/inventory", invDTO.ActionRequest{
		Action: "createProduct", Product: &product, InitialQuantity: initial,
	}, &out)
	return out.Item, err
}

func (c *Client) DeleteProduct(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodPost, "/inventory", invDTO.ActionRequest{Action: "deleteProduct", ItemID: itemID}, nil)
}

func (c *Client) Receive(ctx context.Context, reference string, lines []invDTO.ReceiveLine) (int, error) {
	var out successBody
	err := c.do(ctx, http.MethodPost, "/inventory", invDTO.ActionRequest{
		Action: "receive", Reference: reference, Items: lines,
	}, &out)
	return out.Applied, err
}

func (c *Client) Items(ctx context.Context) ([]model.StockItem, error) {
	var items []model.StockItem
	err := c.do(ctx, http.MethodGet, "/stock-items", nil, &items)
	return items, err
}

func (c *Client) SearchItems(ctx context.Context, query string) ([]model.StockItem, error) {
	var items []model.StockItem
	err := c.do(ctx, http.MethodGet, "/stock-items/search?q="+url.QueryEscape(query), nil, &items)
	return items, err
}

func (c *Client) CreateItem(ctx context.Context, name, sku, barcode string) (*model.StockItem, error) {
	var item model.StockItem
	err := c.do(ctx, http.MethodPost, "/stock-items", map[string]string{
		"name": name, "sku": sku, "barcode": barcode,
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*model.StockItem, error) {
	var item model.StockItem
	if err := c.do(ctx, http.MethodGet, "/stock-items/barcode?barcode="+url.QueryEscape(barcode), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Requests(ctx context.Context, status, storeLocation string) ([]model.StockRequest, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if storeLocation != "" {
		q.Set("storeLocation", storeLocation)
	}
	path := "/stock-requests"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var requests []model.StockRequest
	err := c.do(ctx, http.MethodGet, path, nil, &requests)
	return requests, err
}

func (c *Client) CreateRequest(ctx context.Context, input reqDTO.CreateRequestInput) (*model.StockRequest, error) {
	var out successBody
	err := c.do(ctx, http.MethodPost, "/stock-requests", reqDTO.ActionRequest{Action: "create", Request: &input}, &out)
	return out.Request, err
}

func (c *Client) UpdateStatus(ctx context.Context, requestID string, status model.RequestStatus, opts *reqDTO.TransitionOptions) (*model.StockRequest, error) {
	var out successBody
	err := c.do(ctx, http.MethodPost, "/stock-requests", reqDTO.ActionRequest{
		Action: "updateStatus", RequestID: requestID, Status: status, Options: opts,
	}, &out)
	return out.Request, err
}

func (c *Client) DeleteRequest(ctx context.Context, requestID string) error {
	return c.do(ctx, http.MethodPost, "/stock-requests", reqDTO.ActionRequest{Action: "delete", RequestID: requestID}, nil)
}

func (c *Client) StartFulfillment(ctx context.Context, requestID string) (*fulfillment.Session, error) {
	var s fulfillment.Session
	if err := c.do(ctx, http.MethodPost, "/fulfillments/"+url.PathEscape(requestID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Scan(ctx context.Context, requestID, barcode string) (*fulDTO.ScanResult, error) {
	var result fulDTO.ScanResult
	if err := c.do(ctx, http.MethodPost, "/fulfillments/"+url.PathEscape(requestID)+"/scan", fulDTO.ScanInput{Barcode: barcode}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Confirm(ctx context.Context, requestID, itemID string, quantity int) (*fulfillment.Session, error) {
	var s fulfillment.Session
	if err := c.do(ctx, http.MethodPost, "/fulfillments/"+url.PathEscape(requestID)+"/confirm", fulDTO.ConfirmInput{ItemID: itemID, Quantity: quantity}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Ship(ctx context.Context, requestID string) (*model.StockRequest, error) {
	var out successBody
	err := c.do(ctx, http.MethodPost, "/fulfillments/"+url.PathEscape(requestID)+"/ship", nil, &out)
	return out.Request, err
}
