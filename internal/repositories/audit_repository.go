package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pharmaledger_backend/internal/models"
)

// AuditRepository defines the interface for the append-only audit log.
type AuditRepository interface {
	CreateLog(executor SQLExecutor, entry *models.AuditLog) (int64, error)
	GetLogs(filters models.AuditFilters) ([]models.AuditLog, int, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateLog(executor SQLExecutor, entry *models.AuditLog) (int64, error) {
	query := `INSERT INTO audit_logs (actor_id, action, details, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var actorID sql.NullInt64
	if entry.ActorID != nil {
		actorID = sql.NullInt64{Int64: *entry.ActorID, Valid: true}
	}

	err := executor.QueryRow(query, actorID, entry.Action, entry.Details, entry.CreatedAt).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating audit log: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

func (r *auditRepository) GetLogs(filters models.AuditFilters) ([]models.AuditLog, int, error) {
	logs := []models.AuditLog{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, actor_id, action, details, created_at, COUNT(*) OVER() AS total_count
	  FROM audit_logs`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Action != nil && *filters.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argCount))
		args = append(args, *filters.Action)
		argCount++
	}
	if filters.ActorID != nil {
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", argCount))
		args = append(args, *filters.ActorID)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting audit logs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.AuditLog
		var actorID sql.NullInt64
		if err := rows.Scan(&entry.ID, &actorID, &entry.Action, &entry.Details, &entry.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning audit log: %v", ErrDatabaseError, err)
		}
		if actorID.Valid {
			entry.ActorID = &actorID.Int64
		}
		logs = append(logs, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating audit logs: %v", ErrDatabaseError, err)
	}
	return logs, totalCount, nil
}
