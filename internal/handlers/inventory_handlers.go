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

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

// CreateItem adds a catalog item. Quick-add at the counter only needs a name
// and an MRP.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	item, err := h.inventoryService.CreateItem(middleware.OperatorIDFromContext(c), req)
	if err != nil {
		utils.LogError(err, "CreateItem: Error from inventoryService.CreateItem")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item details.", err.Error()))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to create item.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItemByID fetches one catalog item.
func (h *InventoryHandler) GetItemByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.inventoryService.GetItemByID(id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetItemByID: Error from inventoryService.GetItemByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch item.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetItems lists catalog items with search and low-stock filters.
func (h *InventoryHandler) GetItems(c *gin.Context) {
	var filters models.InventoryFilters
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	filters.LowStock = c.Query("low_stock") == "true"
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	filters.Page = page
	filters.PageSize = pageSize

	items, totalCount, err := h.inventoryService.GetItems(filters)
	if err != nil {
		utils.LogError(err, "GetItems: Error from inventoryService.GetItems")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to fetch items.", "Internal error"))
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	respondPage(c, items, totalCount, filters.Page, filters.PageSize)
}

// UpdateItem changes catalog details. Stock is deliberately not updatable
// through this endpoint.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	item, err := h.inventoryService.UpdateItem(id, req)
	if err != nil {
		utils.LogError(err, "UpdateItem: Error from inventoryService.UpdateItem")
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", err.Error()))
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item details.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to update item.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// WriteOff removes damaged or expired stock.
func (h *InventoryHandler) WriteOff(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	item, err := h.inventoryService.WriteOff(id, middleware.OperatorIDFromContext(c), req)
	if err != nil {
		utils.LogError(err, "WriteOff: Error from inventoryService.WriteOff")
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", err.Error()))
		case errors.Is(err, services.ErrInvalidStockQty), errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid write-off request.", err.Error()))
		case errors.Is(err, services.ErrStockConflict):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStockConflict, "Not enough stock to write off.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to write off stock.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// ReceiveGoods books a goods received note from a supplier.
func (h *InventoryHandler) ReceiveGoods(c *gin.Context) {
	var req services.ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	items, err := h.inventoryService.ReceiveGoods(middleware.OperatorIDFromContext(c), req)
	if err != nil {
		utils.LogError(err, "ReceiveGoods: Error from inventoryService.ReceiveGoods")
		switch {
		case errors.Is(err, services.ErrPartyNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Supplier account not found.", err.Error()))
		case errors.Is(err, services.ErrItemNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", err.Error()))
		case errors.Is(err, services.ErrInvalidStockQty), errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid goods receipt.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to receive goods.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": items})
}
