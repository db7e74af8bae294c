package services

import (
	"testing"

	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/repositories"
)

// testEnv wires the full service layer over the in-memory store, the same
// configuration the server runs in when Postgres is down.
type testEnv struct {
	store     *repositories.FallbackStore
	cart      CartService
	ledger    LedgerService
	party     PartyService
	inventory InventoryService
	audit     AuditService
	auth      AuthService
}

func newTestEnv() *testEnv {
	store := repositories.NewFallbackStore()
	audit := NewAuditService(store, store)
	cart := NewCartService(store, store, store, store)
	ledger := NewLedgerService(cart, store, store, store, store, audit, store)
	party := NewPartyService(store, audit, store)
	inventory := NewInventoryService(store, store, audit, store)
	auth := NewAuthService(store, store)
	return &testEnv{
		store:     store,
		cart:      cart,
		ledger:    ledger,
		party:     party,
		inventory: inventory,
		audit:     audit,
		auth:      auth,
	}
}

func (e *testEnv) seedItem(t *testing.T, name string, mrp int64, stock int) *models.InventoryItem {
	t.Helper()
	item, err := e.inventory.CreateItem(nil, CreateItemRequest{
		Name:         name,
		MRP:          mrp,
		InitialStock: stock,
	})
	if err != nil {
		t.Fatalf("seedItem(%s): %v", name, err)
	}
	return item
}

func (e *testEnv) seedParty(t *testing.T, partyType, name string) *models.PartyAccount {
	t.Helper()
	party, err := e.party.CreateParty(CreatePartyRequest{
		PartyType: partyType,
		FullName:  name,
	})
	if err != nil {
		t.Fatalf("seedParty(%s): %v", name, err)
	}
	return party
}

func (e *testEnv) addLine(t *testing.T, terminal string, itemID int64, qty int) {
	t.Helper()
	if _, err := e.cart.AddLine(terminal, AddLineRequest{ItemID: itemID, Quantity: qty}); err != nil {
		t.Fatalf("addLine(item %d, qty %d): %v", itemID, qty, err)
	}
}

func (e *testEnv) stockOf(t *testing.T, itemID int64) int {
	t.Helper()
	item, err := e.inventory.GetItemByID(itemID)
	if err != nil {
		t.Fatalf("stockOf(%d): %v", itemID, err)
	}
	return item.CurrentStock
}

func (e *testEnv) balanceOf(t *testing.T, partyID int64) int64 {
	t.Helper()
	party, err := e.party.GetPartyByID(partyID)
	if err != nil {
		t.Fatalf("balanceOf(%d): %v", partyID, err)
	}
	return party.Balance
}
