package services

import (
	"fmt"

	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/repositories"
	"pharmaledger_backend/pkg/utils"
)

// --- AuditService Interface ---

// AuditService records who did what at the counter. Record is best-effort: a
// failed audit write is logged and swallowed, it never fails the action that
// produced it.
type AuditService interface {
	Record(actorID *int64, action string, details string)
	GetLogs(filters models.AuditFilters) ([]models.AuditLog, int, error)
}

// --- auditService Implementation ---

type auditService struct {
	auditRepo repositories.AuditRepository
	runner    repositories.TxRunner
}

// NewAuditService creates a new instance of AuditService.
func NewAuditService(auditRepo repositories.AuditRepository, runner repositories.TxRunner) AuditService {
	return &auditService{auditRepo: auditRepo, runner: runner}
}

func (s *auditService) Record(actorID *int64, action string, details string) {
	entry := &models.AuditLog{
		ActorID: actorID,
		Action:  action,
	}
	if details != "" {
		entry.Details = &details
	}
	err := s.runner.InTx(func(executor repositories.SQLExecutor) error {
		_, err := s.auditRepo.CreateLog(executor, entry)
		return err
	})
	if err != nil {
		utils.LogError(err, fmt.Sprintf("failed to write audit log for action %s", action))
	}
}

func (s *auditService) GetLogs(filters models.AuditFilters) ([]models.AuditLog, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 50
	}
	logs, totalCount, err := s.auditRepo.GetLogs(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get audit logs: %w", err)
	}
	return logs, totalCount, nil
}
