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

// SaleHandler holds the ledger service for checkout and sale queries.
type SaleHandler struct {
	ledgerService services.LedgerService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ls services.LedgerService) *SaleHandler {
	return &SaleHandler{ledgerService: ls}
}

// Checkout commits the terminal's active cart as a sale.
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.ledgerService.Checkout(terminalID(c), middleware.OperatorIDFromContext(c), req)
	if err != nil {
		utils.LogError(err, "Checkout: Error from ledgerService.Checkout")
		switch {
		case errors.Is(err, services.ErrCartEmpty):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Active cart is empty.", err.Error()))
		case errors.Is(err, services.ErrInvalidPaymentMode), errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid checkout request.", err.Error()))
		case errors.Is(err, services.ErrPartyNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer account not found.", err.Error()))
		case errors.Is(err, services.ErrInsufficientPayment):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusPaymentRequired, utils.ErrCodeInsufficientPayment, "Amount tendered is less than the bill total.", err.Error()))
		case errors.Is(err, services.ErrStockConflict):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStockConflict, "Stock changed since the cart was built. Review the cart and retry.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to commit sale.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSaleByID fetches a committed sale with its lines.
func (h *SaleHandler) GetSaleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.ledgerService.GetSaleByID(id)
	if err != nil {
		if errors.Is(err, services.ErrSaleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sale not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetSaleByID: Error from ledgerService.GetSaleByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch sale.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, sale)
}

// GetSaleByInvoiceNo fetches a committed sale by its printed invoice number.
func (h *SaleHandler) GetSaleByInvoiceNo(c *gin.Context) {
	invoiceNo := c.Param("invoice_no")
	sale, err := h.ledgerService.GetSaleByInvoiceNo(invoiceNo)
	if err != nil {
		if errors.Is(err, services.ErrSaleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sale not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetSaleByInvoiceNo: Error from ledgerService.GetSaleByInvoiceNo")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch sale.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, sale)
}

// GetSales lists committed sales with filters.
func (h *SaleHandler) GetSales(c *gin.Context) {
	var filters models.SaleFilters
	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		customerID, err := strconv.ParseInt(customerIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid customer_id format.", err.Error()))
			return
		}
		filters.CustomerID = &customerID
	}
	if date := c.Query("date"); date != "" {
		filters.Date = &date
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	filters.Page = page
	filters.PageSize = pageSize

	sales, totalCount, err := h.ledgerService.GetSales(filters)
	if err != nil {
		utils.LogError(err, "GetSales: Error from ledgerService.GetSales")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch sales.", "Internal error"))
		return
	}
	if sales == nil {
		sales = []models.Sale{}
	}
	respondPage(c, sales, totalCount, filters.Page, filters.PageSize)
}
