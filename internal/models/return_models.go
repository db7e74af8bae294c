package models

import "time"

// SalesReturn reverses part (or all) of a committed sale: stock goes back up
// and, when the sale was on a customer account, the customer's balance goes
// down by the refund. Returns are terminal; a return cannot be returned.
type SalesReturn struct {
	ID           int64             `json:"id" db:"id"`
	SaleID       int64             `json:"sale_id" db:"sale_id"`
	InvoiceNo    string            `json:"invoice_no" db:"invoice_no"`
	RefundAmount int64             `json:"refund_amount" db:"refund_amount"`
	Reason       *string           `json:"reason,omitempty" db:"reason"`
	OperatorID   *int64            `json:"operator_id,omitempty" db:"operator_id"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	Lines        []SalesReturnLine `json:"lines,omitempty"`
}

// SalesReturnLine records the returned quantity of one original sale line.
type SalesReturnLine struct {
	ID          int64  `json:"id" db:"id"`
	ReturnID    int64  `json:"return_id" db:"return_id"`
	ItemID      int64  `json:"item_id" db:"item_id"`
	ItemName    string `json:"item_name" db:"item_name"`
	ReturnedQty int    `json:"returned_qty" db:"returned_qty"`
	UnitPrice   int64  `json:"unit_price" db:"unit_price"`
	LineRefund  int64  `json:"line_refund" db:"line_refund"`
}

// ReturnFilters defines the available filters for querying sales returns.
type ReturnFilters struct {
	SaleID   *int64 `form:"sale_id"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
