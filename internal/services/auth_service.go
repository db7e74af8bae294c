package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/repositories"
	"pharmaledger_backend/pkg/utils"
)

// --- Custom Service Errors for Authentication ---
var (
	ErrInvalidCredentials = errors.New("invalid operator code or PIN")
)

// --- Auth DTOs ---

type LoginRequest struct {
	Code string `json:"code" binding:"required"`
	PIN  string `json:"pin" binding:"required"`
}

type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	Operator    *models.Operator `json:"operator"`
}

type CreateOperatorRequest struct {
	Code     string `json:"code" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	PIN      string `json:"pin" binding:"required,min=4"`
}

// --- AuthService Interface ---

// AuthService identifies operators so ledger actions carry attribution.
type AuthService interface {
	Login(req LoginRequest) (*LoginResponse, error)
	CreateOperator(req CreateOperatorRequest) (*models.Operator, error)
	GetOperatorByID(operatorID int64) (*models.Operator, error)
	EnsureDefaultOperator(code, fullName, pin string) error
}

// --- authService Implementation ---

type authService struct {
	operatorRepo repositories.OperatorRepository
	runner       repositories.TxRunner
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(operatorRepo repositories.OperatorRepository, runner repositories.TxRunner) AuthService {
	return &authService{operatorRepo: operatorRepo, runner: runner}
}

func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	operator, err := s.operatorRepo.GetOperatorByCode(req.Code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch operator %s: %w", req.Code, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.PinHash), []byte(req.PIN)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateAccessToken(operator.ID, operator.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &LoginResponse{AccessToken: token, Operator: operator}, nil
}

func (s *authService) CreateOperator(req CreateOperatorRequest) (*models.Operator, error) {
	if len(req.PIN) < 4 {
		return nil, fmt.Errorf("%w: PIN must be at least 4 characters", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}
	operator := &models.Operator{
		Code:     req.Code,
		FullName: req.FullName,
		PinHash:  string(hash),
	}
	err = s.runner.InTx(func(executor repositories.SQLExecutor) error {
		_, err := s.operatorRepo.CreateOperator(executor, operator)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: operator code %s already exists", ErrValidation, req.Code)
		}
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}
	return operator, nil
}

func (s *authService) GetOperatorByID(operatorID int64) (*models.Operator, error) {
	operator, err := s.operatorRepo.GetOperatorByID(operatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("operator %d: %w", operatorID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch operator %d: %w", operatorID, err)
	}
	return operator, nil
}

// EnsureDefaultOperator seeds a counter operator when none exists yet, so a
// fresh install (or the in-memory fallback store) can log in immediately.
func (s *authService) EnsureDefaultOperator(code, fullName, pin string) error {
	_, err := s.operatorRepo.GetOperatorByCode(code)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check for operator %s: %w", code, err)
	}
	_, err = s.CreateOperator(CreateOperatorRequest{Code: code, FullName: fullName, PIN: pin})
	if err != nil {
		return err
	}
	utils.LogInfo(fmt.Sprintf("Seeded default operator %q; change its PIN before going live", code))
	return nil
}
