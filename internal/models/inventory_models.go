package models

import "time"

// InventoryItem represents one stocked medicine/product in the pharmacy catalog.
// Monetary fields are paise. Stock is only ever mutated through the ledger
// engine's stock adjustment, never written directly by handlers.
type InventoryItem struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name" binding:"required"`
	GenericName   *string    `json:"generic_name,omitempty" db:"generic_name"`
	BatchNumber   *string    `json:"batch_number,omitempty" db:"batch_number"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	CurrentStock  int        `json:"current_stock" db:"current_stock"`
	MinStock      int        `json:"min_stock" db:"min_stock"`
	PurchasePrice int64      `json:"purchase_price" db:"purchase_price"`
	MRP           int64      `json:"mrp" db:"mrp" binding:"required,gt=0"`
	GSTPct        float64    `json:"gst_pct" db:"gst_pct"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// InventoryFilters defines the available filters for querying inventory items.
type InventoryFilters struct {
	Search   *string `form:"search"`
	LowStock bool    `form:"low_stock"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
