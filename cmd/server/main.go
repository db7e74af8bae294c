package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"pharmaledger_backend/internal/database"
	"pharmaledger_backend/internal/repositories"
	router_pkg "pharmaledger_backend/internal/router"
	"pharmaledger_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize Logger
	utils.InitLogger()

	// JWT secret for operator tokens
	utils.InitJWT(utils.Getenv("JWT_SECRET", "pharmaledger-dev-secret-change-me"))

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "pharmaledger_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "pharmaledger_password")
	dbName := utils.Getenv("DB_NAME", "pharmaledger_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	// Initialize persistence. A dead database must not take the counter
	// down with it: when Postgres is unreachable (or DB_DISABLE is set)
	// the process keeps selling out of an in-memory store and the day's
	// records are reconciled manually afterwards.
	var stores router_pkg.Stores
	if utils.GetenvBool("DB_DISABLE", false) {
		utils.LogInfo("DB_DISABLE set, using in-memory fallback store; records will need manual reconciliation")
		stores = router_pkg.NewFallbackStores(repositories.NewFallbackStore())
	} else {
		db, err := database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
		if err != nil {
			utils.LogError(err, "Database unreachable, falling back to in-memory store; records will need manual reconciliation")
			stores = router_pkg.NewFallbackStores(repositories.NewFallbackStore())
		} else {
			stores = router_pkg.NewSQLStores(db)
		}
	}

	router := gin.Default()

	// Add GinLogger middleware for request logging
	router.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Terminal-ID"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Setup all application routes
	svcs := router_pkg.Setup(router, stores)

	// Seed a counter operator so a fresh install (or the fallback store)
	// has someone who can log in.
	defaultOperatorCode := utils.Getenv("DEFAULT_OPERATOR_CODE", "counter1")
	defaultOperatorPIN := utils.Getenv("DEFAULT_OPERATOR_PIN", "1234")
	if err := svcs.Auth.EnsureDefaultOperator(defaultOperatorCode, "Counter Operator", defaultOperatorPIN); err != nil {
		utils.LogError(err, "Failed to seed default operator")
	}

	// Server port configuration
	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := router.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
