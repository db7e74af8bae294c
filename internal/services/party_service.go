package services

import (
	"errors"
	"fmt"

	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/repositories"
	"pharmaledger_backend/pkg/utils"
)

// --- Custom Service Errors for Party Accounts ---
var (
	ErrPartyNotFound  = errors.New("party account not found")
	ErrInvalidAmount  = errors.New("transaction amount must be greater than zero")
	ErrInvalidTxnMode = errors.New("transaction mode is not valid for this party type")
)

// --- Party DTOs ---

type CreatePartyRequest struct {
	PartyType string  `json:"party_type" binding:"required"`
	FullName  string  `json:"full_name" binding:"required"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
}

type UpdatePartyRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

// PartyTransactionRequest posts one manual ledger transaction. Amount is
// paise and always positive; the mode decides the direction.
type PartyTransactionRequest struct {
	TxnMode string  `json:"txn_mode" binding:"required"`
	Amount  int64   `json:"amount" binding:"required"`
	Note    *string `json:"note"`
}

// --- PartyService Interface ---

// PartyService manages customer and supplier accounts and their running
// balances. Balances only ever move through ApplyTransaction or through the
// ledger engine's checkout and return postings.
type PartyService interface {
	CreateParty(req CreatePartyRequest) (*models.PartyAccount, error)
	GetPartyByID(partyID int64) (*models.PartyAccount, error)
	GetParties(filters models.PartyFilters) ([]models.PartyAccount, int, error)
	UpdateParty(partyID int64, req UpdatePartyRequest) (*models.PartyAccount, error)
	ApplyTransaction(partyID int64, operatorID *int64, req PartyTransactionRequest) (*models.PartyLedgerEntry, error)
	GetLedger(partyID int64, page, pageSize int) ([]models.PartyLedgerEntry, int, error)
}

// --- partyService Implementation ---

type partyService struct {
	partyRepo repositories.PartyRepository
	audit     AuditService
	runner    repositories.TxRunner
}

// NewPartyService creates a new instance of PartyService.
func NewPartyService(partyRepo repositories.PartyRepository, audit AuditService, runner repositories.TxRunner) PartyService {
	return &partyService{partyRepo: partyRepo, audit: audit, runner: runner}
}

func (s *partyService) CreateParty(req CreatePartyRequest) (*models.PartyAccount, error) {
	if req.PartyType != models.PartyTypeCustomer && req.PartyType != models.PartyTypeSupplier {
		return nil, fmt.Errorf("%w: party type must be %s or %s", ErrValidation, models.PartyTypeCustomer, models.PartyTypeSupplier)
	}
	if req.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	party := &models.PartyAccount{
		PartyType: req.PartyType,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	err := s.runner.InTx(func(executor repositories.SQLExecutor) error {
		_, err := s.partyRepo.CreateParty(executor, party)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create party account: %w", err)
	}
	return party, nil
}

func (s *partyService) GetPartyByID(partyID int64) (*models.PartyAccount, error) {
	party, err := s.partyRepo.GetPartyByID(partyID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: party ID %d", ErrPartyNotFound, partyID)
		}
		return nil, fmt.Errorf("failed to fetch party %d: %w", partyID, err)
	}
	return party, nil
}

func (s *partyService) GetParties(filters models.PartyFilters) ([]models.PartyAccount, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	parties, totalCount, err := s.partyRepo.GetParties(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get party accounts: %w", err)
	}
	return parties, totalCount, nil
}

func (s *partyService) UpdateParty(partyID int64, req UpdatePartyRequest) (*models.PartyAccount, error) {
	party, err := s.GetPartyByID(partyID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		if *req.FullName == "" {
			return nil, fmt.Errorf("%w: full name must not be empty", ErrValidation)
		}
		party.FullName = *req.FullName
	}
	if req.Phone != nil {
		party.Phone = req.Phone
	}
	if req.Email != nil {
		party.Email = req.Email
	}
	err = s.runner.InTx(func(executor repositories.SQLExecutor) error {
		return s.partyRepo.UpdateParty(executor, party)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update party %d: %w", partyID, err)
	}
	return party, nil
}

// delta returns the signed balance movement for a manual transaction, or an
// error when the mode does not apply to the party's type. SALE_ON_CREDIT and
// RETURN_REFUND are reserved for the checkout and return flows.
func transactionDelta(party *models.PartyAccount, txnMode string, amount int64) (int64, error) {
	switch party.PartyType {
	case models.PartyTypeCustomer:
		switch txnMode {
		case models.TxnModePaymentReceived:
			return -amount, nil
		case models.TxnModeAddCharge:
			return amount, nil
		}
	case models.PartyTypeSupplier:
		switch txnMode {
		case models.TxnModePaymentMade:
			return -amount, nil
		case models.TxnModeAddCharge:
			return amount, nil
		}
	}
	return 0, fmt.Errorf("%w: %s for %s", ErrInvalidTxnMode, txnMode, party.PartyType)
}

func transactionNarrative(party *models.PartyAccount, txnMode string, amount int64, note *string) string {
	var narrative string
	switch txnMode {
	case models.TxnModePaymentReceived:
		narrative = fmt.Sprintf("Received %s from %s", utils.FormatRupees(amount), party.FullName)
	case models.TxnModePaymentMade:
		narrative = fmt.Sprintf("Paid %s to %s", utils.FormatRupees(amount), party.FullName)
	case models.TxnModeAddCharge:
		narrative = fmt.Sprintf("Charge of %s added to %s", utils.FormatRupees(amount), party.FullName)
	}
	if note != nil && *note != "" {
		narrative = fmt.Sprintf("%s (%s)", narrative, *note)
	}
	return narrative
}

func (s *partyService) ApplyTransaction(partyID int64, operatorID *int64, req PartyTransactionRequest) (*models.PartyLedgerEntry, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, req.Amount)
	}
	party, err := s.GetPartyByID(partyID)
	if err != nil {
		return nil, err
	}
	delta, err := transactionDelta(party, req.TxnMode, req.Amount)
	if err != nil {
		return nil, err
	}

	entry := &models.PartyLedgerEntry{
		PartyID:   partyID,
		TxnMode:   req.TxnMode,
		Amount:    req.Amount,
		Narrative: transactionNarrative(party, req.TxnMode, req.Amount, req.Note),
	}
	err = s.runner.InTx(func(executor repositories.SQLExecutor) error {
		newBalance, err := s.partyRepo.AdjustBalance(executor, partyID, delta)
		if err != nil {
			return fmt.Errorf("failed to adjust balance for party %d: %w", partyID, err)
		}
		entry.BalanceAfter = newBalance
		if _, err := s.partyRepo.CreateLedgerEntry(executor, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(operatorID, "party_transaction", entry.Narrative)
	return entry, nil
}

func (s *partyService) GetLedger(partyID int64, page, pageSize int) ([]models.PartyLedgerEntry, int, error) {
	if _, err := s.GetPartyByID(partyID); err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	entries, totalCount, err := s.partyRepo.GetLedgerEntries(partyID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get ledger for party %d: %w", partyID, err)
	}
	return entries, totalCount, nil
}
