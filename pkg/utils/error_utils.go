package utils

import (
	"github.com/gin-gonic/gin"
)

// Standardized APIError response
type APIError struct {
	StatusCode int    `json:"-"` // HTTP status code, not included in JSON response body for error itself
	Code       string `json:"code,omitempty"` // Application-specific error code
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"error": err})
	c.Abort()
}

// Generic error codes
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
)

// Ledger error codes. These are the operator-facing taxonomy: every one of
// them is recoverable at the terminal and none crashes the process.
const (
	ErrCodeOutOfStock          = "OUT_OF_STOCK"
	ErrCodeStockExceeded       = "STOCK_EXCEEDED"
	ErrCodeStockConflict       = "STOCK_CONFLICT"
	ErrCodeInsufficientPayment = "INSUFFICIENT_PAYMENT"
	ErrCodeInvalidReturnQty    = "INVALID_RETURN_QTY"
	ErrCodeEmptyReturn         = "EMPTY_RETURN"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodePersistenceFailure  = "PERSISTENCE_FAILURE"
)
