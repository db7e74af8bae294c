package handlers

import (
	"errors"
	"net/http"

	"pharmaledger_backend/internal/middleware"
	"pharmaledger_backend/internal/services"
	"pharmaledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login exchanges an operator code and PIN for an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	resp, err := h.authService.Login(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid operator code or PIN.", ""))
			return
		}
		utils.LogError(err, "Login: Error from authService.Login")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to log in.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateOperator registers a new counter operator.
func (h *AuthHandler) CreateOperator(c *gin.Context) {
	var req services.CreateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	operator, err := h.authService.CreateOperator(req)
	if err != nil {
		utils.LogError(err, "CreateOperator: Error from authService.CreateOperator")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid operator details.", err.Error()))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailure, "Failed to create operator.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, operator)
}

// Me returns the authenticated operator's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	operatorID := middleware.OperatorIDFromContext(c)
	if operatorID == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", ""))
		return
	}
	operator, err := h.authService.GetOperatorByID(*operatorID)
	if err != nil {
		utils.LogError(err, "Me: Error from authService.GetOperatorByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch operator profile.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, operator)
}
