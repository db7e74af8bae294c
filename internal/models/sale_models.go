package models

import "time"

// Payment modes accepted at the point of sale.
const (
	PaymentModeCash   = "cash"
	PaymentModeUPI    = "upi"
	PaymentModeCard   = "card"
	PaymentModeCredit = "credit"
)

// CartLine is one line of an active (or held) cart. The unit price and GST
// percentage are snapshotted when the line is first added so a mid-cart
// catalog price change never drifts the bill.
type CartLine struct {
	ItemID    int64   `json:"item_id" db:"item_id"`
	ItemName  string  `json:"item_name" db:"item_name"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice int64   `json:"unit_price" db:"unit_price"`
	GSTPct    float64 `json:"gst_pct" db:"gst_pct"`
	LineTotal int64   `json:"line_total" db:"line_total"`
}

// HeldBill is a cart checkpoint saved mid-transaction for later resumption.
// It carries no inventory or ledger effect until recalled and checked out.
type HeldBill struct {
	ID         string     `json:"id" db:"id"`
	Label      *string    `json:"label,omitempty" db:"label"`
	TerminalID string     `json:"terminal_id" db:"terminal_id"`
	CustomerID *int64     `json:"customer_id,omitempty" db:"customer_id"`
	Lines      []CartLine `json:"lines"`
	HeldAt     time.Time  `json:"held_at" db:"held_at"`
}

// Sale is a committed checkout. Immutable after commit except for being
// referenced by later returns.
type Sale struct {
	ID           int64      `json:"id" db:"id"`
	InvoiceSeq   int64      `json:"invoice_seq" db:"invoice_seq"`
	InvoiceNo    string     `json:"invoice_no" db:"invoice_no"`
	CustomerID   *int64     `json:"customer_id,omitempty" db:"customer_id"`
	OperatorID   *int64     `json:"operator_id,omitempty" db:"operator_id"`
	SubTotal     int64      `json:"sub_total" db:"sub_total"`
	GSTAmount    int64      `json:"gst_amount" db:"gst_amount"`
	Discount     int64      `json:"discount" db:"discount"`
	RoundedTotal int64      `json:"rounded_total" db:"rounded_total"`
	AmountPaid   int64      `json:"amount_paid" db:"amount_paid"`
	BalanceDue   int64      `json:"balance_due" db:"balance_due"`
	PaymentMode  string     `json:"payment_mode" db:"payment_mode"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	Lines        []SaleLine `json:"lines,omitempty"`
}

// SaleLine is a committed cart line belonging to a sale.
type SaleLine struct {
	ID        int64   `json:"id" db:"id"`
	SaleID    int64   `json:"sale_id" db:"sale_id"`
	ItemID    int64   `json:"item_id" db:"item_id"`
	ItemName  string  `json:"item_name" db:"item_name"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice int64   `json:"unit_price" db:"unit_price"`
	GSTPct    float64 `json:"gst_pct" db:"gst_pct"`
	LineTotal int64   `json:"line_total" db:"line_total"`
}

// SaleFilters defines the available filters for querying sales.
type SaleFilters struct {
	CustomerID *int64  `form:"customer_id"`
	Date       *string `form:"date"` // YYYY-MM-DD
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}

// IsValidPaymentMode reports whether mode is one of the accepted POS modes.
func IsValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeCredit:
		return true
	default:
		return false
	}
}
