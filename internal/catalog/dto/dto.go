package dto

type CreateItemInput struct {
	Name    string `json:"name" binding:"required"`
	SKU     string `json:"sku" binding:"required"`
	Barcode string `json:"barcode"`
}

type SearchFilters struct {
	Query string
	Limit int
}
