package model

type InventoryEntry struct {
	ID                string `db:"id" json:"id"`
	ItemID            string `db:"item_id" json:"itemId"`
	AvailableQuantity int    `db:"available_quantity" json:"availableQuantity"`
}

// InventoryRow is an inventory entry joined with its catalog item, the shape
// returned by GET /inventory.
type InventoryRow struct {
	InventoryEntry
	Name    string  `db:"name" json:"name"`
	SKU     string  `db:"sku" json:"sku"`
	Barcode *string `db:"barcode" json:"barcode"`
}
