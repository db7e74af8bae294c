package models

import "time"

// Party types and ledger transaction modes.
const (
	PartyTypeCustomer = "customer"
	PartyTypeSupplier = "supplier"

	TxnModePaymentReceived = "PAYMENT_RECEIVED"
	TxnModePaymentMade     = "PAYMENT_MADE"
	TxnModeAddCharge       = "ADD_CHARGE"
	TxnModeSaleOnCredit    = "SALE_ON_CREDIT"
	TxnModeReturnRefund    = "RETURN_REFUND"
)

// PartyAccount is a customer or supplier ledger record with a signed running
// balance in paise. For a customer, balance > 0 means the pharmacy is owed
// money; for a supplier, balance > 0 means the pharmacy owes the supplier.
type PartyAccount struct {
	ID        int64     `json:"id" db:"id"`
	PartyType string    `json:"party_type" db:"party_type" binding:"required"`
	FullName  string    `json:"full_name" db:"full_name" binding:"required"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Balance   int64     `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PartyLedgerEntry is one posted ledger transaction against a party account.
// BalanceAfter is the party's running balance immediately after the posting.
type PartyLedgerEntry struct {
	ID           int64     `json:"id" db:"id"`
	PartyID      int64     `json:"party_id" db:"party_id"`
	TxnMode      string    `json:"txn_mode" db:"txn_mode"`
	Amount       int64     `json:"amount" db:"amount"`
	BalanceAfter int64     `json:"balance_after" db:"balance_after"`
	Narrative    string    `json:"narrative" db:"narrative"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PartyFilters defines the available filters for querying party accounts.
type PartyFilters struct {
	PartyType *string `form:"party_type"`
	Search    *string `form:"search"`
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
