package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pharmaledger_backend/internal/models"

	"github.com/lib/pq"
)

// OperatorRepository defines the interface for terminal operator records.
type OperatorRepository interface {
	CreateOperator(executor SQLExecutor, op *models.Operator) (int64, error)
	GetOperatorByCode(code string) (*models.Operator, error)
	GetOperatorByID(id int64) (*models.Operator, error)
}

type operatorRepository struct {
	db *sql.DB
}

// NewOperatorRepository creates a new instance of OperatorRepository.
func NewOperatorRepository(db *sql.DB) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) CreateOperator(executor SQLExecutor, op *models.Operator) (int64, error) {
	query := `INSERT INTO operators (code, full_name, pin_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query, op.Code, op.FullName, op.PinHash, currentTime, currentTime).Scan(&op.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: operator code '%s' already exists", ErrDuplicateKey, op.Code)
		}
		return 0, fmt.Errorf("%w: creating operator: %v", ErrDatabaseError, err)
	}
	return op.ID, nil
}

func (r *operatorRepository) GetOperatorByCode(code string) (*models.Operator, error) {
	op := &models.Operator{}
	query := `SELECT id, code, full_name, pin_hash, created_at, updated_at FROM operators WHERE code = $1`
	err := r.db.QueryRow(query, code).Scan(&op.ID, &op.Code, &op.FullName, &op.PinHash, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting operator by code %s: %v", ErrDatabaseError, code, err)
	}
	return op, nil
}

func (r *operatorRepository) GetOperatorByID(id int64) (*models.Operator, error) {
	op := &models.Operator{}
	query := `SELECT id, code, full_name, pin_hash, created_at, updated_at FROM operators WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&op.ID, &op.Code, &op.FullName, &op.PinHash, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting operator by ID %d: %v", ErrDatabaseError, id, err)
	}
	return op, nil
}
