package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmaledger_backend/internal/models"

	"github.com/lib/pq"
)

// PartyRepository defines the interface for customer/supplier accounts and
// their ledger entries. Balances change only through AdjustBalance so every
// balance mutation pairs with a posted ledger entry in the same transaction.
type PartyRepository interface {
	CreateParty(executor SQLExecutor, party *models.PartyAccount) (int64, error)
	GetPartyByID(id int64) (*models.PartyAccount, error)
	GetParties(filters models.PartyFilters) ([]models.PartyAccount, int, error)
	UpdateParty(executor SQLExecutor, party *models.PartyAccount) error
	AdjustBalance(executor SQLExecutor, partyID int64, delta int64) (int64, error)
	CreateLedgerEntry(executor SQLExecutor, entry *models.PartyLedgerEntry) (int64, error)
	GetLedgerEntries(partyID int64, page, pageSize int) ([]models.PartyLedgerEntry, int, error)
}

type partyRepository struct {
	db *sql.DB
}

// NewPartyRepository creates a new instance of PartyRepository.
func NewPartyRepository(db *sql.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) CreateParty(executor SQLExecutor, party *models.PartyAccount) (int64, error) {
	query := `INSERT INTO party_accounts (party_type, full_name, phone, email, balance, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	currentTime := time.Now()

	err := executor.QueryRow(query,
		party.PartyType, party.FullName, party.Phone, party.Email, party.Balance,
		currentTime, currentTime,
	).Scan(&party.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating party account: %v", ErrDatabaseError, err)
	}
	party.CreatedAt = currentTime
	party.UpdatedAt = currentTime
	return party.ID, nil
}

func (r *partyRepository) GetPartyByID(id int64) (*models.PartyAccount, error) {
	party := &models.PartyAccount{}
	query := `SELECT id, party_type, full_name, phone, email, balance, created_at, updated_at
	          FROM party_accounts WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&party.ID, &party.PartyType, &party.FullName, &party.Phone, &party.Email,
		&party.Balance, &party.CreatedAt, &party.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting party account by ID %d: %v", ErrDatabaseError, id, err)
	}
	return party, nil
}

func (r *partyRepository) GetParties(filters models.PartyFilters) ([]models.PartyAccount, int, error) {
	parties := []models.PartyAccount{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, party_type, full_name, phone, email, balance, created_at, updated_at, COUNT(*) OVER() AS total_count
	  FROM party_accounts`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.PartyType != nil && *filters.PartyType != "" {
		conditions = append(conditions, fmt.Sprintf("party_type = $%d", argCount))
		args = append(args, *filters.PartyType)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		searchPattern := "%" + strings.ToLower(*filters.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(COALESCE(phone, '')) LIKE $%d)", argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY full_name ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying party accounts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var party models.PartyAccount
		if err := rows.Scan(
			&party.ID, &party.PartyType, &party.FullName, &party.Phone, &party.Email,
			&party.Balance, &party.CreatedAt, &party.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning party account: %v", ErrDatabaseError, err)
		}
		parties = append(parties, party)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating party accounts: %v", ErrDatabaseError, err)
	}
	return parties, totalCount, nil
}

func (r *partyRepository) UpdateParty(executor SQLExecutor, party *models.PartyAccount) error {
	// balance is deliberately not written here: balance changes only go
	// through AdjustBalance.
	query := `UPDATE party_accounts SET full_name = $1, phone = $2, email = $3, updated_at = $4
	          WHERE id = $5`
	result, err := executor.Exec(query, party.FullName, party.Phone, party.Email, time.Now(), party.ID)
	if err != nil {
		return fmt.Errorf("%w: updating party account ID %d: %v", ErrDatabaseError, party.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustBalance applies delta to a party's signed balance and returns the
// new balance.
func (r *partyRepository) AdjustBalance(executor SQLExecutor, partyID int64, delta int64) (int64, error) {
	var newBalance int64
	query := `UPDATE party_accounts SET balance = balance + $1, updated_at = $2
	          WHERE id = $3
	          RETURNING balance`
	err := executor.QueryRow(query, delta, time.Now(), partyID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: adjusting balance for party ID %d: %v", ErrDatabaseError, partyID, err)
	}
	return newBalance, nil
}

func (r *partyRepository) CreateLedgerEntry(executor SQLExecutor, entry *models.PartyLedgerEntry) (int64, error) {
	query := `INSERT INTO party_ledger_entries (party_id, txn_mode, amount, balance_after, narrative, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	err := executor.QueryRow(query,
		entry.PartyID, entry.TxnMode, entry.Amount, entry.BalanceAfter, entry.Narrative, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating ledger entry for party ID %d: %v", ErrDatabaseError, entry.PartyID, err)
	}
	return entry.ID, nil
}

func (r *partyRepository) GetLedgerEntries(partyID int64, page, pageSize int) ([]models.PartyLedgerEntry, int, error) {
	entries := []models.PartyLedgerEntry{}
	totalCount := 0
	query := `SELECT id, party_id, txn_mode, amount, balance_after, narrative, created_at, COUNT(*) OVER() AS total_count
	          FROM party_ledger_entries
	          WHERE party_id = $1
	          ORDER BY created_at DESC, id DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(query, partyID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting ledger entries for party ID %d: %v", ErrDatabaseError, partyID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.PartyLedgerEntry
		if err := rows.Scan(
			&entry.ID, &entry.PartyID, &entry.TxnMode, &entry.Amount,
			&entry.BalanceAfter, &entry.Narrative, &entry.CreatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning ledger entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating ledger entries: %v", ErrDatabaseError, err)
	}
	return entries, totalCount, nil
}
