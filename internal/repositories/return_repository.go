package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pharmaledger_backend/internal/models"
)

// ReturnRepository defines the interface for sales return records.
type ReturnRepository interface {
	CreateReturn(executor SQLExecutor, ret *models.SalesReturn) (int64, error)
	CreateReturnLine(executor SQLExecutor, line *models.SalesReturnLine) (int64, error)
	GetReturns(filters models.ReturnFilters) ([]models.SalesReturn, int, error)
	GetReturnLinesBySaleID(saleID int64) ([]models.SalesReturnLine, error)
}

type returnRepository struct {
	db *sql.DB
}

// NewReturnRepository creates a new instance of ReturnRepository.
func NewReturnRepository(db *sql.DB) ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) CreateReturn(executor SQLExecutor, ret *models.SalesReturn) (int64, error) {
	query := `INSERT INTO sales_returns (sale_id, invoice_no, refund_amount, reason, operator_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = time.Now()
	}

	var operatorID sql.NullInt64
	if ret.OperatorID != nil {
		operatorID = sql.NullInt64{Int64: *ret.OperatorID, Valid: true}
	}

	err := executor.QueryRow(query,
		ret.SaleID, ret.InvoiceNo, ret.RefundAmount, ret.Reason, operatorID, ret.CreatedAt,
	).Scan(&ret.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sales return for sale ID %d: %v", ErrDatabaseError, ret.SaleID, err)
	}
	return ret.ID, nil
}

func (r *returnRepository) CreateReturnLine(executor SQLExecutor, line *models.SalesReturnLine) (int64, error) {
	query := `INSERT INTO sales_return_lines (return_id, item_id, item_name, returned_qty, unit_price, line_refund)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	err := executor.QueryRow(query,
		line.ReturnID, line.ItemID, line.ItemName, line.ReturnedQty, line.UnitPrice, line.LineRefund,
	).Scan(&line.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sales return line (item_id: %d): %v", ErrDatabaseError, line.ItemID, err)
	}
	return line.ID, nil
}

func (r *returnRepository) GetReturns(filters models.ReturnFilters) ([]models.SalesReturn, int, error) {
	returns := []models.SalesReturn{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, sale_id, invoice_no, refund_amount, reason, operator_id, created_at, COUNT(*) OVER() AS total_count
	  FROM sales_returns`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.SaleID != nil {
		conditions = append(conditions, fmt.Sprintf("sale_id = $%d", argCount))
		args = append(args, *filters.SaleID)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting sales returns: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ret models.SalesReturn
		var operatorID sql.NullInt64
		if err := rows.Scan(
			&ret.ID, &ret.SaleID, &ret.InvoiceNo, &ret.RefundAmount, &ret.Reason,
			&operatorID, &ret.CreatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sales return: %v", ErrDatabaseError, err)
		}
		if operatorID.Valid {
			ret.OperatorID = &operatorID.Int64
		}
		returns = append(returns, ret)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sales returns: %v", ErrDatabaseError, err)
	}
	return returns, totalCount, nil
}

// GetReturnLinesBySaleID fetches every return line posted against a sale,
// across all of its returns. Used to cap cumulative returned quantity.
func (r *returnRepository) GetReturnLinesBySaleID(saleID int64) ([]models.SalesReturnLine, error) {
	lines := []models.SalesReturnLine{}
	query := `SELECT rl.id, rl.return_id, rl.item_id, rl.item_name, rl.returned_qty, rl.unit_price, rl.line_refund
	          FROM sales_return_lines rl
	          JOIN sales_returns sr ON rl.return_id = sr.id
	          WHERE sr.sale_id = $1
	          ORDER BY rl.id`
	rows, err := r.db.Query(query, saleID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting return lines for sale ID %d: %v", ErrDatabaseError, saleID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.SalesReturnLine
		if err := rows.Scan(
			&line.ID, &line.ReturnID, &line.ItemID, &line.ItemName,
			&line.ReturnedQty, &line.UnitPrice, &line.LineRefund,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning sales return line: %v", ErrDatabaseError, err)
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sales return lines: %v", ErrDatabaseError, err)
	}
	return lines, nil
}
