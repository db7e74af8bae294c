package handlers

import (
	"errors"
	"net/http"

	"pharmaledger_backend/internal/services"
	"pharmaledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CartHandler holds the cart service.
type CartHandler struct {
	cartService services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cs services.CartService) *CartHandler {
	return &CartHandler{cartService: cs}
}

// AddLine adds an item to the terminal's active cart.
func (h *CartHandler) AddLine(c *gin.Context) {
	var req services.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cart, err := h.cartService.AddLine(terminalID(c), req)
	if err != nil {
		utils.LogError(err, "AddLine: Error from cartService.AddLine")
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", err.Error()))
		case errors.Is(err, services.ErrOutOfStock):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeOutOfStock, "Item is out of stock.", err.Error()))
		case errors.Is(err, services.ErrStockExceeded):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStockExceeded, "Requested quantity exceeds available stock.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to add item to cart.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveLine removes one line of the active cart by its index.
func (h *CartHandler) RemoveLine(c *gin.Context) {
	index, ok := parseIDParam(c, "index")
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveLine(terminalID(c), int(index))
	if err != nil {
		if errors.Is(err, services.ErrLineNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cart line not found.", err.Error()))
			return
		}
		utils.LogError(err, "RemoveLine: Error from cartService.RemoveLine")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to remove cart line.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, cart)
}

// SetCustomer binds (or unbinds) a customer account to the active cart.
func (h *CartHandler) SetCustomer(c *gin.Context) {
	var req struct {
		CustomerID *int64 `json:"customer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	cart, err := h.cartService.SetCustomer(terminalID(c), req.CustomerID)
	if err != nil {
		utils.LogError(err, "SetCustomer: Error from cartService.SetCustomer")
		switch {
		case errors.Is(err, services.ErrPartyNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer account not found.", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Party is not a customer account.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to set cart customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, cart)
}

// GetCart returns the terminal's active cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartService.ActiveCart(terminalID(c)))
}

// ClearCart abandons the terminal's active cart.
func (h *CartHandler) ClearCart(c *gin.Context) {
	h.cartService.ClearCart(terminalID(c))
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// HoldBill parks the active cart so another sale can be rung up.
func (h *CartHandler) HoldBill(c *gin.Context) {
	var req services.HoldBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	held, err := h.cartService.Hold(terminalID(c), req)
	if err != nil {
		utils.LogError(err, "HoldBill: Error from cartService.Hold")
		if errors.Is(err, services.ErrCartEmpty) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Active cart is empty, nothing to hold.", err.Error()))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to hold bill.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, held)
}

// RecallBill restores a held bill into the (empty) active cart.
func (h *CartHandler) RecallBill(c *gin.Context) {
	heldBillID := c.Param("id")
	cart, err := h.cartService.Recall(terminalID(c), heldBillID)
	if err != nil {
		utils.LogError(err, "RecallBill: Error from cartService.Recall")
		switch {
		case errors.Is(err, services.ErrHeldBillNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Held bill not found.", err.Error()))
		case errors.Is(err, services.ErrCartNotEmpty):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Active cart must be empty before recalling a held bill.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to recall held bill.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ListHeldBills lists the terminal's parked bills.
func (h *CartHandler) ListHeldBills(c *gin.Context) {
	held, err := h.cartService.ListHeld(terminalID(c))
	if err != nil {
		utils.LogError(err, "ListHeldBills: Error from cartService.ListHeld")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to list held bills.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": held})
}
