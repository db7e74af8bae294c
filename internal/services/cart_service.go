package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/repositories"
)

// --- Custom Service Errors for Cart ---
var (
	ErrOutOfStock       = errors.New("item is out of stock")
	ErrStockExceeded    = errors.New("requested quantity exceeds available stock")
	ErrItemNotFound     = errors.New("inventory item not found")
	ErrCartEmpty        = errors.New("active cart is empty")
	ErrCartNotEmpty     = errors.New("active cart must be empty before recalling a held bill")
	ErrLineNotFound     = errors.New("cart line not found")
	ErrHeldBillNotFound = errors.New("held bill not found")
)

// --- Cart DTOs ---

type AddLineRequest struct {
	ItemID   int64 `json:"item_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,gt=0"`
}

type HoldBillRequest struct {
	Label string `json:"label"`
}

// Cart is the view of one terminal's active cart.
type Cart struct {
	TerminalID string            `json:"terminal_id"`
	CustomerID *int64            `json:"customer_id,omitempty"`
	Lines      []models.CartLine `json:"lines"`
	SubTotal   int64             `json:"sub_total"`
}

// --- CartService Interface ---

// CartService accumulates one ephemeral cart per terminal. Carts never touch
// inventory or the ledger; stock is only adjusted at checkout.
type CartService interface {
	AddLine(terminalID string, req AddLineRequest) (*Cart, error)
	RemoveLine(terminalID string, index int) (*Cart, error)
	SetCustomer(terminalID string, customerID *int64) (*Cart, error)
	ActiveCart(terminalID string) *Cart
	ClearCart(terminalID string)
	Hold(terminalID string, req HoldBillRequest) (*models.HeldBill, error)
	Recall(terminalID string, heldBillID string) (*Cart, error)
	ListHeld(terminalID string) ([]models.HeldBill, error)
}

// --- cartService Implementation ---

type activeCart struct {
	customerID *int64
	lines      []models.CartLine
}

type cartService struct {
	mu           sync.Mutex
	carts        map[string]*activeCart
	inventory    repositories.InventoryRepository
	parties      repositories.PartyRepository
	heldBillRepo repositories.HeldBillRepository
	runner       repositories.TxRunner
}

// NewCartService creates a new instance of CartService.
func NewCartService(
	inventory repositories.InventoryRepository,
	parties repositories.PartyRepository,
	heldBillRepo repositories.HeldBillRepository,
	runner repositories.TxRunner,
) CartService {
	return &cartService{
		carts:        make(map[string]*activeCart),
		inventory:    inventory,
		parties:      parties,
		heldBillRepo: heldBillRepo,
		runner:       runner,
	}
}

func (s *cartService) cartFor(terminalID string) *activeCart {
	cart, ok := s.carts[terminalID]
	if !ok {
		cart = &activeCart{}
		s.carts[terminalID] = cart
	}
	return cart
}

func (s *cartService) viewOf(terminalID string, cart *activeCart) *Cart {
	view := &Cart{
		TerminalID: terminalID,
		CustomerID: cart.customerID,
		Lines:      append([]models.CartLine(nil), cart.lines...),
	}
	for _, line := range cart.lines {
		view.SubTotal += line.LineTotal
	}
	return view
}

// AddLine appends a new line or increments an existing one. The unit price
// and GST percentage are snapshotted on first add; a later catalog price
// change does not move lines already in the cart.
func (s *cartService) AddLine(terminalID string, req AddLineRequest) (*Cart, error) {
	item, err := s.inventory.GetItemByID(req.ItemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item ID %d", ErrItemNotFound, req.ItemID)
		}
		return nil, fmt.Errorf("failed to fetch item %d for cart: %w", req.ItemID, err)
	}
	if item.CurrentStock <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfStock, item.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartFor(terminalID)
	for i := range cart.lines {
		if cart.lines[i].ItemID == req.ItemID {
			newQty := cart.lines[i].Quantity + req.Quantity
			if newQty > item.CurrentStock {
				return nil, fmt.Errorf("%w: %s, requested %d, available %d",
					ErrStockExceeded, item.Name, newQty, item.CurrentStock)
			}
			cart.lines[i].Quantity = newQty
			cart.lines[i].LineTotal = int64(newQty) * cart.lines[i].UnitPrice
			return s.viewOf(terminalID, cart), nil
		}
	}

	if req.Quantity > item.CurrentStock {
		return nil, fmt.Errorf("%w: %s, requested %d, available %d",
			ErrStockExceeded, item.Name, req.Quantity, item.CurrentStock)
	}
	cart.lines = append(cart.lines, models.CartLine{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Quantity:  req.Quantity,
		UnitPrice: item.MRP,
		GSTPct:    item.GSTPct,
		LineTotal: int64(req.Quantity) * item.MRP,
	})
	return s.viewOf(terminalID, cart), nil
}

// RemoveLine drops a line unconditionally. No stock side effect.
func (s *cartService) RemoveLine(terminalID string, index int) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartFor(terminalID)
	if index < 0 || index >= len(cart.lines) {
		return nil, fmt.Errorf("%w: index %d", ErrLineNotFound, index)
	}
	cart.lines = append(cart.lines[:index], cart.lines[index+1:]...)
	return s.viewOf(terminalID, cart), nil
}

func (s *cartService) SetCustomer(terminalID string, customerID *int64) (*Cart, error) {
	if customerID != nil {
		party, err := s.parties.GetPartyByID(*customerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: party ID %d", ErrPartyNotFound, *customerID)
			}
			return nil, fmt.Errorf("failed to fetch party %d: %w", *customerID, err)
		}
		if party.PartyType != models.PartyTypeCustomer {
			return nil, fmt.Errorf("%w: party %d is not a customer", ErrValidation, *customerID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartFor(terminalID)
	cart.customerID = customerID
	return s.viewOf(terminalID, cart), nil
}

func (s *cartService) ActiveCart(terminalID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewOf(terminalID, s.cartFor(terminalID))
}

func (s *cartService) ClearCart(terminalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, terminalID)
}

func newHeldBillID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("HB-%d", time.Now().UnixNano())
	}
	return "HB-" + hex.EncodeToString(buf)
}

// Hold parks the active cart as a named held bill and clears the cart.
// No inventory or ledger effect.
func (s *cartService) Hold(terminalID string, req HoldBillRequest) (*models.HeldBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartFor(terminalID)
	if len(cart.lines) == 0 {
		return nil, ErrCartEmpty
	}

	bill := &models.HeldBill{
		ID:         newHeldBillID(),
		TerminalID: terminalID,
		CustomerID: cart.customerID,
		Lines:      append([]models.CartLine(nil), cart.lines...),
		HeldAt:     time.Now(),
	}
	if req.Label != "" {
		bill.Label = &req.Label
	}

	err := s.runner.InTx(func(executor repositories.SQLExecutor) error {
		return s.heldBillRepo.CreateHeldBill(executor, bill)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist held bill: %w", err)
	}

	delete(s.carts, terminalID)
	return bill, nil
}

// Recall restores a held bill as the active cart and removes it from the
// held set. A stale id (recalled elsewhere already) reports not found.
func (s *cartService) Recall(terminalID string, heldBillID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartFor(terminalID)
	if len(cart.lines) > 0 {
		return nil, ErrCartNotEmpty
	}

	var bill *models.HeldBill
	err := s.runner.InTx(func(executor repositories.SQLExecutor) error {
		popped, popErr := s.heldBillRepo.PopHeldBill(executor, heldBillID)
		if popErr != nil {
			return popErr
		}
		bill = popped
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrHeldBillNotFound, heldBillID)
		}
		return nil, fmt.Errorf("failed to recall held bill %s: %w", heldBillID, err)
	}

	cart.customerID = bill.CustomerID
	cart.lines = append([]models.CartLine(nil), bill.Lines...)
	return s.viewOf(terminalID, cart), nil
}

func (s *cartService) ListHeld(terminalID string) ([]models.HeldBill, error) {
	bills, err := s.heldBillRepo.GetHeldBills(terminalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list held bills: %w", err)
	}
	return bills, nil
}
