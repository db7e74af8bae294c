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

// InventoryRepository defines the interface for inventory catalog operations.
// AdjustStock is the single primitive through which stock ever changes; it is
// conditional so concurrent terminals cannot drive stock below zero.
type InventoryRepository interface {
	CreateItem(executor SQLExecutor, item *models.InventoryItem) (int64, error)
	GetItemByID(id int64) (*models.InventoryItem, error)
	GetItems(filters models.InventoryFilters) ([]models.InventoryItem, int, error)
	UpdateItem(executor SQLExecutor, item *models.InventoryItem) error
	AdjustStock(executor SQLExecutor, itemID int64, delta int) (int, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) CreateItem(executor SQLExecutor, item *models.InventoryItem) (int64, error) {
	query := `INSERT INTO inventory_items
	          (name, generic_name, batch_number, expiry_date, current_stock, min_stock, purchase_price, mrp, gst_pct, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	currentTime := time.Now()

	var expiry sql.NullTime
	if item.ExpiryDate != nil && !item.ExpiryDate.IsZero() {
		expiry = sql.NullTime{Time: *item.ExpiryDate, Valid: true}
	}

	err := executor.QueryRow(query,
		item.Name, item.GenericName, item.BatchNumber, expiry,
		item.CurrentStock, item.MinStock, item.PurchasePrice, item.MRP, item.GSTPct,
		currentTime, currentTime,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: creating inventory item (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating inventory item: %v", ErrDatabaseError, err)
	}
	item.CreatedAt = currentTime
	item.UpdatedAt = currentTime
	return item.ID, nil
}

func (r *inventoryRepository) GetItemByID(id int64) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `SELECT id, name, generic_name, batch_number, expiry_date, current_stock, min_stock, purchase_price, mrp, gst_pct, created_at, updated_at
	          FROM inventory_items WHERE id = $1`

	var expiry sql.NullTime
	err := r.db.QueryRow(query, id).Scan(
		&item.ID, &item.Name, &item.GenericName, &item.BatchNumber, &expiry,
		&item.CurrentStock, &item.MinStock, &item.PurchasePrice, &item.MRP, &item.GSTPct,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory item by ID %d: %v", ErrDatabaseError, id, err)
	}
	if expiry.Valid {
		item.ExpiryDate = &expiry.Time
	}
	return item, nil
}

func (r *inventoryRepository) GetItems(filters models.InventoryFilters) ([]models.InventoryItem, int, error) {
	items := []models.InventoryItem{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, name, generic_name, batch_number, expiry_date, current_stock, min_stock, purchase_price, mrp, gst_pct, created_at, updated_at, COUNT(*) OVER() AS total_count
	  FROM inventory_items`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Search != nil && *filters.Search != "" {
		searchPattern := "%" + strings.ToLower(*filters.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(COALESCE(generic_name, '')) LIKE $%d)", argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}
	if filters.LowStock {
		conditions = append(conditions, "current_stock <= min_stock")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY name")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting inventory items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InventoryItem
		var expiry sql.NullTime
		if err := rows.Scan(
			&item.ID, &item.Name, &item.GenericName, &item.BatchNumber, &expiry,
			&item.CurrentStock, &item.MinStock, &item.PurchasePrice, &item.MRP, &item.GSTPct,
			&item.CreatedAt, &item.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory item: %v", ErrDatabaseError, err)
		}
		if expiry.Valid {
			item.ExpiryDate = &expiry.Time
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory items: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

func (r *inventoryRepository) UpdateItem(executor SQLExecutor, item *models.InventoryItem) error {
	// current_stock is deliberately not written here: stock changes only go
	// through AdjustStock.
	query := `UPDATE inventory_items SET
	            name = $1, generic_name = $2, batch_number = $3, expiry_date = $4,
	            min_stock = $5, purchase_price = $6, mrp = $7, gst_pct = $8, updated_at = $9
	          WHERE id = $10`

	var expiry sql.NullTime
	if item.ExpiryDate != nil && !item.ExpiryDate.IsZero() {
		expiry = sql.NullTime{Time: *item.ExpiryDate, Valid: true}
	}

	result, err := executor.Exec(query,
		item.Name, item.GenericName, item.BatchNumber, expiry,
		item.MinStock, item.PurchasePrice, item.MRP, item.GSTPct,
		time.Now(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating inventory item ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies delta to an item's stock with a conditional update, so
// the stock row can never go negative even under concurrent terminals. A zero
// row count on an existing item means another write consumed the stock first.
func (r *inventoryRepository) AdjustStock(executor SQLExecutor, itemID int64, delta int) (int, error) {
	var newStock int
	query := `UPDATE inventory_items
	          SET current_stock = current_stock + $1, updated_at = $2
	          WHERE id = $3 AND current_stock + $1 >= 0
	          RETURNING current_stock`
	err := executor.QueryRow(query, delta, time.Now(), itemID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			checkErr := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM inventory_items WHERE id = $1)", itemID).Scan(&exists)
			if checkErr == nil && !exists {
				return 0, ErrNotFound
			}
			return 0, fmt.Errorf("%w: item ID %d, delta %d", ErrStockConflict, itemID, delta)
		}
		return 0, fmt.Errorf("%w: adjusting stock for item ID %d: %v", ErrDatabaseError, itemID, err)
	}
	return newStock, nil
}
