package router

import (
	"pharmaledger_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authenticated operator routes.
func SetupAuthRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := authenticatedGroup.Group("/auth")
	{
		authRoutes.GET("/me", authHandler.Me)
		authRoutes.POST("/operators", authHandler.CreateOperator)
	}
}

// SetupCartRoutes sets up the per-terminal cart routes.
func SetupCartRoutes(authenticatedGroup *gin.RouterGroup, cartHandler *handlers.CartHandler) {
	cartRoutes := authenticatedGroup.Group("/cart")
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.DELETE("", cartHandler.ClearCart)
		cartRoutes.POST("/lines", cartHandler.AddLine)
		cartRoutes.DELETE("/lines/:index", cartHandler.RemoveLine)
		cartRoutes.PUT("/customer", cartHandler.SetCustomer)
		cartRoutes.POST("/hold", cartHandler.HoldBill)
		cartRoutes.POST("/recall/:id", cartHandler.RecallBill)
		cartRoutes.GET("/held", cartHandler.ListHeldBills)
	}
}

// SetupSaleRoutes sets up checkout and sale query routes.
func SetupSaleRoutes(authenticatedGroup *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	saleRoutes := authenticatedGroup.Group("/sales")
	{
		saleRoutes.POST("/checkout", saleHandler.Checkout)
		saleRoutes.GET("", saleHandler.GetSales)
		saleRoutes.GET("/:id", saleHandler.GetSaleByID)
		saleRoutes.GET("/invoice/:invoice_no", saleHandler.GetSaleByInvoiceNo)
	}
}

// SetupReturnRoutes sets up sales-return routes.
func SetupReturnRoutes(authenticatedGroup *gin.RouterGroup, returnHandler *handlers.ReturnHandler) {
	returnRoutes := authenticatedGroup.Group("/returns")
	{
		returnRoutes.POST("", returnHandler.ProcessReturn)
		returnRoutes.GET("", returnHandler.GetReturns)
	}
}

// SetupInventoryRoutes sets up catalog and stock routes.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	itemRoutes := authenticatedGroup.Group("/items")
	{
		itemRoutes.POST("", inventoryHandler.CreateItem)
		itemRoutes.GET("", inventoryHandler.GetItems)
		itemRoutes.GET("/:id", inventoryHandler.GetItemByID)
		itemRoutes.PUT("/:id", inventoryHandler.UpdateItem)
		itemRoutes.POST("/:id/write-off", inventoryHandler.WriteOff)
	}
	authenticatedGroup.POST("/goods-receipts", inventoryHandler.ReceiveGoods)
}

// SetupPartyRoutes sets up customer/supplier account and ledger routes.
func SetupPartyRoutes(authenticatedGroup *gin.RouterGroup, partyHandler *handlers.PartyHandler) {
	partyRoutes := authenticatedGroup.Group("/parties")
	{
		partyRoutes.POST("", partyHandler.CreateParty)
		partyRoutes.GET("", partyHandler.GetParties)
		partyRoutes.GET("/:id", partyHandler.GetPartyByID)
		partyRoutes.PUT("/:id", partyHandler.UpdateParty)
		partyRoutes.POST("/:id/transactions", partyHandler.ApplyTransaction)
		partyRoutes.GET("/:id/ledger", partyHandler.GetLedger)
	}
}

// SetupAuditRoutes sets up the audit log routes.
func SetupAuditRoutes(authenticatedGroup *gin.RouterGroup, auditHandler *handlers.AuditHandler) {
	auditRoutes := authenticatedGroup.Group("/audit-logs")
	{
		auditRoutes.GET("", auditHandler.GetLogs)
	}
}
