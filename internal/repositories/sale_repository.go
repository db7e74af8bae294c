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

// SaleRepository defines the interface for committed sale records.
// NextInvoiceSeq must be called inside the same transaction that creates the
// sale so invoice numbers stay sequential; the unique constraint on
// invoice_seq backstops the rare collision between concurrent checkouts.
type SaleRepository interface {
	NextInvoiceSeq(executor SQLExecutor) (int64, error)
	CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error)
	CreateSaleLine(executor SQLExecutor, line *models.SaleLine) (int64, error)
	GetSaleByID(id int64) (*models.Sale, error)
	GetSaleByInvoiceNo(invoiceNo string) (*models.Sale, error)
	GetSales(filters models.SaleFilters) ([]models.Sale, int, error)
	GetSaleLinesBySaleID(saleID int64) ([]models.SaleLine, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) NextInvoiceSeq(executor SQLExecutor) (int64, error) {
	var next int64
	err := executor.QueryRow(`SELECT COALESCE(MAX(invoice_seq), 0) + 1 FROM sales`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("%w: allocating next invoice number: %v", ErrDatabaseError, err)
	}
	return next, nil
}

func (r *saleRepository) CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := `INSERT INTO sales
	          (invoice_seq, invoice_no, customer_id, operator_id, sub_total, gst_amount, discount, rounded_total, amount_paid, balance_due, payment_mode, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}

	var customerID sql.NullInt64
	if sale.CustomerID != nil {
		customerID = sql.NullInt64{Int64: *sale.CustomerID, Valid: true}
	}
	var operatorID sql.NullInt64
	if sale.OperatorID != nil {
		operatorID = sql.NullInt64{Int64: *sale.OperatorID, Valid: true}
	}

	err := executor.QueryRow(query,
		sale.InvoiceSeq, sale.InvoiceNo, customerID, operatorID,
		sale.SubTotal, sale.GSTAmount, sale.Discount, sale.RoundedTotal,
		sale.AmountPaid, sale.BalanceDue, sale.PaymentMode, sale.CreatedAt,
	).Scan(&sale.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: invoice number %s already allocated (constraint: %s)", ErrDuplicateKey, sale.InvoiceNo, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating sale: %v", ErrDatabaseError, err)
	}
	return sale.ID, nil
}

func (r *saleRepository) CreateSaleLine(executor SQLExecutor, line *models.SaleLine) (int64, error) {
	query := `INSERT INTO sale_lines (sale_id, item_id, item_name, quantity, unit_price, gst_pct, line_total)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := executor.QueryRow(query,
		line.SaleID, line.ItemID, line.ItemName, line.Quantity,
		line.UnitPrice, line.GSTPct, line.LineTotal,
	).Scan(&line.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sale line (item_id: %d): %v", ErrDatabaseError, line.ItemID, err)
	}
	return line.ID, nil
}

const saleColumns = `id, invoice_seq, invoice_no, customer_id, operator_id, sub_total, gst_amount, discount, rounded_total, amount_paid, balance_due, payment_mode, created_at`

func (r *saleRepository) scanSale(row *sql.Row) (*models.Sale, error) {
	sale := &models.Sale{}
	var customerID, operatorID sql.NullInt64
	err := row.Scan(
		&sale.ID, &sale.InvoiceSeq, &sale.InvoiceNo, &customerID, &operatorID,
		&sale.SubTotal, &sale.GSTAmount, &sale.Discount, &sale.RoundedTotal,
		&sale.AmountPaid, &sale.BalanceDue, &sale.PaymentMode, &sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
	}
	if customerID.Valid {
		sale.CustomerID = &customerID.Int64
	}
	if operatorID.Valid {
		sale.OperatorID = &operatorID.Int64
	}
	return sale, nil
}

func (r *saleRepository) GetSaleByID(id int64) (*models.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return r.scanSale(r.db.QueryRow(query, id))
}

func (r *saleRepository) GetSaleByInvoiceNo(invoiceNo string) (*models.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE invoice_no = $1`
	return r.scanSale(r.db.QueryRow(query, invoiceNo))
}

func (r *saleRepository) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	sales := []models.Sale{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + saleColumns + `, COUNT(*) OVER() AS total_count FROM sales`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argCount))
		args = append(args, *filters.CustomerID)
		argCount++
	}
	if filters.Date != nil && *filters.Date != "" {
		conditions = append(conditions, fmt.Sprintf("DATE(created_at) = $%d", argCount))
		args = append(args, *filters.Date)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY invoice_seq DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		var customerID, operatorID sql.NullInt64
		if err := rows.Scan(
			&sale.ID, &sale.InvoiceSeq, &sale.InvoiceNo, &customerID, &operatorID,
			&sale.SubTotal, &sale.GSTAmount, &sale.Discount, &sale.RoundedTotal,
			&sale.AmountPaid, &sale.BalanceDue, &sale.PaymentMode, &sale.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		if customerID.Valid {
			sale.CustomerID = &customerID.Int64
		}
		if operatorID.Valid {
			sale.OperatorID = &operatorID.Int64
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sales: %v", ErrDatabaseError, err)
	}
	return sales, totalCount, nil
}

func (r *saleRepository) GetSaleLinesBySaleID(saleID int64) ([]models.SaleLine, error) {
	lines := []models.SaleLine{}
	query := `SELECT id, sale_id, item_id, item_name, quantity, unit_price, gst_pct, line_total
	          FROM sale_lines WHERE sale_id = $1 ORDER BY id`
	rows, err := r.db.Query(query, saleID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting sale lines for sale ID %d: %v", ErrDatabaseError, saleID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.SaleLine
		if err := rows.Scan(
			&line.ID, &line.SaleID, &line.ItemID, &line.ItemName,
			&line.Quantity, &line.UnitPrice, &line.GSTPct, &line.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning sale line: %v", ErrDatabaseError, err)
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sale lines: %v", ErrDatabaseError, err)
	}
	return lines, nil
}
