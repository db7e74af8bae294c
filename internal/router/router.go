package router

import (
	"database/sql"

	"pharmaledger_backend/internal/handlers"
	"pharmaledger_backend/internal/middleware"
	"pharmaledger_backend/internal/repositories"
	"pharmaledger_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Stores bundles the persistence layer handed to Setup. It is either a set
// of Postgres-backed repositories or a single in-memory fallback store
// satisfying every repository interface.
type Stores struct {
	Inventory repositories.InventoryRepository
	Sales     repositories.SaleRepository
	Returns   repositories.ReturnRepository
	Parties   repositories.PartyRepository
	HeldBills repositories.HeldBillRepository
	Audit     repositories.AuditRepository
	Operators repositories.OperatorRepository
	Runner    repositories.TxRunner
}

// NewSQLStores builds the Postgres-backed store bundle.
func NewSQLStores(db *sql.DB) Stores {
	return Stores{
		Inventory: repositories.NewInventoryRepository(db),
		Sales:     repositories.NewSaleRepository(db),
		Returns:   repositories.NewReturnRepository(db),
		Parties:   repositories.NewPartyRepository(db),
		HeldBills: repositories.NewHeldBillRepository(db),
		Audit:     repositories.NewAuditRepository(db),
		Operators: repositories.NewOperatorRepository(db),
		Runner:    repositories.NewSQLTxRunner(db),
	}
}

// NewFallbackStores builds the in-memory store bundle used when Postgres is
// unreachable at boot.
func NewFallbackStores(store *repositories.FallbackStore) Stores {
	return Stores{
		Inventory: store,
		Sales:     store,
		Returns:   store,
		Parties:   store,
		HeldBills: store,
		Audit:     store,
		Operators: store,
		Runner:    store,
	}
}

// Services bundles the constructed service layer so main can reach it for
// boot-time seeding.
type Services struct {
	Auth      services.AuthService
	Audit     services.AuditService
	Cart      services.CartService
	Ledger    services.LedgerService
	Party     services.PartyService
	Inventory services.InventoryService
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, stores Stores) Services {
	// Initialize Services
	auditService := services.NewAuditService(stores.Audit, stores.Runner)
	authService := services.NewAuthService(stores.Operators, stores.Runner)
	cartService := services.NewCartService(stores.Inventory, stores.Parties, stores.HeldBills, stores.Runner)
	ledgerService := services.NewLedgerService(cartService, stores.Inventory, stores.Sales, stores.Returns, stores.Parties, auditService, stores.Runner)
	partyService := services.NewPartyService(stores.Parties, auditService, stores.Runner)
	inventoryService := services.NewInventoryService(stores.Inventory, stores.Parties, auditService, stores.Runner)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	cartHandler := handlers.NewCartHandler(cartService)
	saleHandler := handlers.NewSaleHandler(ledgerService)
	returnHandler := handlers.NewReturnHandler(ledgerService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	partyHandler := handlers.NewPartyHandler(partyService)
	auditHandler := handlers.NewAuditHandler(auditService)

	apiV1 := engine.Group("/api/v1")

	// Login is the only public route.
	apiV1.POST("/auth/login", authHandler.Login)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthRoutes(authenticated, authHandler)
		SetupCartRoutes(authenticated, cartHandler)
		SetupSaleRoutes(authenticated, saleHandler)
		SetupReturnRoutes(authenticated, returnHandler)
		SetupInventoryRoutes(authenticated, inventoryHandler)
		SetupPartyRoutes(authenticated, partyHandler)
		SetupAuditRoutes(authenticated, auditHandler)
	}

	return Services{
		Auth:      authService,
		Audit:     auditService,
		Cart:      cartService,
		Ledger:    ledgerService,
		Party:     partyService,
		Inventory: inventoryService,
	}
}
