package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pharmaledger_backend/internal/models"
)

// HeldBillRepository defines the interface for parked carts. PopHeldBill
// deletes and returns in one statement so two terminals cannot both recall
// the same held bill.
type HeldBillRepository interface {
	CreateHeldBill(executor SQLExecutor, bill *models.HeldBill) error
	PopHeldBill(executor SQLExecutor, id string) (*models.HeldBill, error)
	GetHeldBills(terminalID string) ([]models.HeldBill, error)
}

type heldBillRepository struct {
	db *sql.DB
}

// NewHeldBillRepository creates a new instance of HeldBillRepository.
func NewHeldBillRepository(db *sql.DB) HeldBillRepository {
	return &heldBillRepository{db: db}
}

func (r *heldBillRepository) CreateHeldBill(executor SQLExecutor, bill *models.HeldBill) error {
	linesJSON, err := json.Marshal(bill.Lines)
	if err != nil {
		return fmt.Errorf("%w: marshalling held bill lines: %v", ErrDatabaseError, err)
	}
	if bill.HeldAt.IsZero() {
		bill.HeldAt = time.Now()
	}

	var customerID sql.NullInt64
	if bill.CustomerID != nil {
		customerID = sql.NullInt64{Int64: *bill.CustomerID, Valid: true}
	}

	query := `INSERT INTO held_bills (id, label, terminal_id, customer_id, lines, held_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = executor.Exec(query, bill.ID, bill.Label, bill.TerminalID, customerID, linesJSON, bill.HeldAt)
	if err != nil {
		return fmt.Errorf("%w: creating held bill %s: %v", ErrDatabaseError, bill.ID, err)
	}
	return nil
}

func (r *heldBillRepository) PopHeldBill(executor SQLExecutor, id string) (*models.HeldBill, error) {
	bill := &models.HeldBill{}
	var customerID sql.NullInt64
	var linesJSON []byte

	query := `DELETE FROM held_bills WHERE id = $1
	          RETURNING id, label, terminal_id, customer_id, lines, held_at`
	err := executor.QueryRow(query, id).Scan(
		&bill.ID, &bill.Label, &bill.TerminalID, &customerID, &linesJSON, &bill.HeldAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: recalling held bill %s: %v", ErrDatabaseError, id, err)
	}
	if customerID.Valid {
		bill.CustomerID = &customerID.Int64
	}
	if err := json.Unmarshal(linesJSON, &bill.Lines); err != nil {
		return nil, fmt.Errorf("%w: unmarshalling held bill lines for %s: %v", ErrDatabaseError, id, err)
	}
	return bill, nil
}

func (r *heldBillRepository) GetHeldBills(terminalID string) ([]models.HeldBill, error) {
	bills := []models.HeldBill{}
	query := `SELECT id, label, terminal_id, customer_id, lines, held_at
	          FROM held_bills WHERE terminal_id = $1 ORDER BY held_at DESC`
	rows, err := r.db.Query(query, terminalID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting held bills for terminal %s: %v", ErrDatabaseError, terminalID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var bill models.HeldBill
		var customerID sql.NullInt64
		var linesJSON []byte
		if err := rows.Scan(&bill.ID, &bill.Label, &bill.TerminalID, &customerID, &linesJSON, &bill.HeldAt); err != nil {
			return nil, fmt.Errorf("%w: scanning held bill: %v", ErrDatabaseError, err)
		}
		if customerID.Valid {
			bill.CustomerID = &customerID.Int64
		}
		if err := json.Unmarshal(linesJSON, &bill.Lines); err != nil {
			return nil, fmt.Errorf("%w: unmarshalling held bill lines: %v", ErrDatabaseError, err)
		}
		bills = append(bills, bill)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating held bills: %v", ErrDatabaseError, err)
	}
	return bills, nil
}
