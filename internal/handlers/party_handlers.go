package handlers

import (
	"errors"
	"net/http"

	"pharmaledger_backend/internal/middleware"
	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/services"
	"pharmaledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PartyHandler holds the party account service.
type PartyHandler struct {
	partyService services.PartyService
}

// NewPartyHandler creates a new PartyHandler.
func NewPartyHandler(ps services.PartyService) *PartyHandler {
	return &PartyHandler{partyService: ps}
}

// CreateParty registers a customer or supplier account.
func (h *PartyHandler) CreateParty(c *gin.Context) {
	var req services.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	party, err := h.partyService.CreateParty(req)
	if err != nil {
		utils.LogError(err, "CreateParty: Error from partyService.CreateParty")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid party details.", err.Error()))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to create party account.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, party)
}

// GetPartyByID fetches a party account with its current balance.
func (h *PartyHandler) GetPartyByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	party, err := h.partyService.GetPartyByID(id)
	if err != nil {
		if errors.Is(err, services.ErrPartyNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Party account not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetPartyByID: Error from partyService.GetPartyByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch party account.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, party)
}

// GetParties lists party accounts with filters.
func (h *PartyHandler) GetParties(c *gin.Context) {
	var filters models.PartyFilters
	if partyType := c.Query("party_type"); partyType != "" {
		filters.PartyType = &partyType
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	filters.Page = page
	filters.PageSize = pageSize

	parties, totalCount, err := h.partyService.GetParties(filters)
	if err != nil {
		utils.LogError(err, "GetParties: Error from partyService.GetParties")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch party accounts.", "Internal error"))
		return
	}
	if parties == nil {
		parties = []models.PartyAccount{}
	}
	respondPage(c, parties, totalCount, filters.Page, filters.PageSize)
}

// UpdateParty changes a party's contact details. Balances only move through
// ledger transactions.
func (h *PartyHandler) UpdateParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	party, err := h.partyService.UpdateParty(id, req)
	if err != nil {
		utils.LogError(err, "UpdateParty: Error from partyService.UpdateParty")
		switch {
		case errors.Is(err, services.ErrPartyNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Party account not found.", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid party details.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to update party account.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, party)
}

// ApplyTransaction posts a manual ledger transaction against a party.
func (h *PartyHandler) ApplyTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.PartyTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	entry, err := h.partyService.ApplyTransaction(id, middleware.OperatorIDFromContext(c), req)
	if err != nil {
		utils.LogError(err, "ApplyTransaction: Error from partyService.ApplyTransaction")
		switch {
		case errors.Is(err, services.ErrPartyNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Party account not found.", err.Error()))
		case errors.Is(err, services.ErrInvalidAmount):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidAmount, "Transaction amount must be greater than zero.", err.Error()))
		case errors.Is(err, services.ErrInvalidTxnMode):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Transaction mode is not valid for this party type.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to post transaction.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetLedger returns a party's ledger statement, newest first.
func (h *PartyHandler) GetLedger(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	entries, totalCount, err := h.partyService.GetLedger(id, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrPartyNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Party account not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetLedger: Error from partyService.GetLedger")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch ledger.", "Internal error"))
		return
	}
	if entries == nil {
		entries = []models.PartyLedgerEntry{}
	}
	respondPage(c, entries, totalCount, page, pageSize)
}
