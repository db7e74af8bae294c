package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pharmaledger_backend/internal/middleware"
	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/services"
	"pharmaledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReturnHandler holds the ledger service for sales-return processing.
type ReturnHandler struct {
	ledgerService services.LedgerService
}

// NewReturnHandler creates a new ReturnHandler.
func NewReturnHandler(ls services.LedgerService) *ReturnHandler {
	return &ReturnHandler{ledgerService: ls}
}

// ProcessReturn reverses part or all of a committed sale.
func (h *ReturnHandler) ProcessReturn(c *gin.Context) {
	var req services.ProcessReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	ret, err := h.ledgerService.ProcessReturn(middleware.OperatorIDFromContext(c), req)
	if err != nil {
		utils.LogError(err, "ProcessReturn: Error from ledgerService.ProcessReturn")
		switch {
		case errors.Is(err, services.ErrSaleNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Original sale not found.", err.Error()))
		case errors.Is(err, services.ErrInvalidReturnQty):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidReturnQty, "Returned quantity exceeds what was purchased.", err.Error()))
		case errors.Is(err, services.ErrEmptyReturn):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeEmptyReturn, "Return request contains no quantity.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to process return.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, ret)
}

// GetReturns lists processed sales returns with filters.
func (h *ReturnHandler) GetReturns(c *gin.Context) {
	var filters models.ReturnFilters
	if saleIDStr := c.Query("sale_id"); saleIDStr != "" {
		saleID, err := strconv.ParseInt(saleIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid sale_id format.", err.Error()))
			return
		}
		filters.SaleID = &saleID
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	filters.Page = page
	filters.PageSize = pageSize

	returns, totalCount, err := h.ledgerService.GetReturns(filters)
	if err != nil {
		utils.LogError(err, "GetReturns: Error from ledgerService.GetReturns")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch returns.", "Internal error"))
		return
	}
	if returns == nil {
		returns = []models.SalesReturn{}
	}
	respondPage(c, returns, totalCount, filters.Page, filters.PageSize)
}
