package models

import "time"

// Operator is a terminal user known to the system. Operators exist for audit
// attribution of ledger actions; role-based authorization is out of scope.
type Operator struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	FullName  string    `json:"full_name" db:"full_name"`
	PinHash   string    `json:"-" db:"pin_hash"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
