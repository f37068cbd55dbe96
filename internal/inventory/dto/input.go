package dto

type AddStockInput struct {
	ItemID   string
	Quantity int
}

type CreateProductInput struct {
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Barcode         string `json:"barcode"`
	InitialQuantity int    `json:"-"`
}

// ReceiveLine identifies the item by ItemID or, failing that, by Barcode.
type ReceiveLine struct {
	ItemID   string `json:"itemId"`
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

type ReceiveInput struct {
	Reference string
	Lines     []ReceiveLine
	// SkipInvalid logs and skips unresolvable lines instead of failing the batch.
	SkipInvalid bool
}

type ReceiveResult struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// ActionRequest is the body of POST /inventory.
type ActionRequest struct {
	Action          string              `json:"action"`
	ItemID          string              `json:"itemId"`
	Quantity        int                 `json:"quantity"`
	Product         *CreateProductInput `json:"product"`
	InitialQuantity int                 `json:"initialQuantity"`
	Reference       string              `json:"reference"`
	Items           []ReceiveLine       `json:"items"`
}
