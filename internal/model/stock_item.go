package model

type StockItem struct {
	ID      string  `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	SKU     string  `db:"sku" json:"sku"`
	Barcode *string `db:"barcode" json:"barcode"` // Nullable
}

// BarcodeValue returns the barcode or "" when the item has none.
func (i *StockItem) BarcodeValue() string {
	if i.Barcode == nil {
		return ""
	}
	return *i.Barcode
}
