package handlers

import (
	"net/http"
	"strconv"

	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/services"
	"pharmaledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuditHandler holds the audit service.
type AuditHandler struct {
	auditService services.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(as services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: as}
}

// GetLogs lists audit log entries, newest first.
func (h *AuditHandler) GetLogs(c *gin.Context) {
	var filters models.AuditFilters
	if action := c.Query("action"); action != "" {
		filters.Action = &action
	}
	if actorIDStr := c.Query("actor_id"); actorIDStr != "" {
		actorID, err := strconv.ParseInt(actorIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid actor_id format.", err.Error()))
			return
		}
		filters.ActorID = &actorID
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	filters.Page = page
	filters.PageSize = pageSize

	logs, totalCount, err := h.auditService.GetLogs(filters)
	if err != nil {
		utils.LogError(err, "GetLogs: Error from auditService.GetLogs")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch audit logs.", "Internal error"))
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	respondPage(c, logs, totalCount, filters.Page, filters.PageSize)
}
