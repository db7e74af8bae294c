package services

import (
	"errors"
	"testing"

	"pharmaledger_backend/internal/models"
)

// Adding more units than live stock in one line must be rejected outright.
func TestAddLineStockExceeded(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)

	_, err := env.cart.AddLine(terminal, AddLineRequest{ItemID: item.ID, Quantity: 11})
	if !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("AddLine error = %v, want ErrStockExceeded", err)
	}
	if len(env.cart.ActiveCart(terminal).Lines) != 0 {
		t.Error("cart should be unchanged after a rejected add")
	}
}

func TestAddLineOutOfStock(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "Expired", 5000, 0)

	_, err := env.cart.AddLine(terminal, AddLineRequest{ItemID: item.ID, Quantity: 1})
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("AddLine error = %v, want ErrOutOfStock", err)
	}
}

func TestAddLineUnknownItem(t *testing.T) {
	env := newTestEnv()
	_, err := env.cart.AddLine(terminal, AddLineRequest{ItemID: 404, Quantity: 1})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("AddLine error = %v, want ErrItemNotFound", err)
	}
}

// Re-adding the same item merges into one line, and the merged quantity is
// still capped by live stock.
func TestAddLineMergesAndCapsQuantity(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)

	env.addLine(t, terminal, item.ID, 6)
	if _, err := env.cart.AddLine(terminal, AddLineRequest{ItemID: item.ID, Quantity: 5}); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("merge beyond stock error = %v, want ErrStockExceeded", err)
	}

	cart, err := env.cart.AddLine(terminal, AddLineRequest{ItemID: item.ID, Quantity: 4})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("cart lines = %d, want 1 (merged)", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 10 {
		t.Errorf("merged quantity = %d, want 10", cart.Lines[0].Quantity)
	}
	if cart.Lines[0].LineTotal != 50000 {
		t.Errorf("LineTotal = %d, want 50000", cart.Lines[0].LineTotal)
	}
}

// The unit price is snapshotted when the line is first added; a catalog price
// change mid-cart must not drift the bill.
func TestAddLinePriceSnapshot(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)
	env.addLine(t, terminal, item.ID, 1)

	newMRP := int64(9000)
	if _, err := env.inventory.UpdateItem(item.ID, UpdateItemRequest{MRP: &newMRP}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	cart, err := env.cart.AddLine(terminal, AddLineRequest{ItemID: item.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if cart.Lines[0].UnitPrice != 5000 {
		t.Errorf("UnitPrice = %d, want 5000 (snapshotted)", cart.Lines[0].UnitPrice)
	}
	if cart.Lines[0].LineTotal != 10000 {
		t.Errorf("LineTotal = %d, want 10000", cart.Lines[0].LineTotal)
	}
}

// Hold then recall reproduces the identical line set and customer binding.
func TestHoldRecallRoundTrip(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	itemY := env.seedItem(t, "ItemY", 10000, 5)
	customer := env.seedParty(t, models.PartyTypeCustomer, "Asha Rao")

	env.addLine(t, terminal, itemX.ID, 2)
	env.addLine(t, terminal, itemY.ID, 1)
	if _, err := env.cart.SetCustomer(terminal, &customer.ID); err != nil {
		t.Fatalf("SetCustomer: %v", err)
	}
	before := env.cart.ActiveCart(terminal)

	held, err := env.cart.Hold(terminal, HoldBillRequest{Label: "Mrs Rao, gone to ATM"})
	if err != nil {
		t.Fatalf("Hold: %v", err)
	}
	if len(env.cart.ActiveCart(terminal).Lines) != 0 {
		t.Fatal("active cart should be empty after hold")
	}

	after, err := env.cart.Recall(terminal, held.ID)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(after.Lines) != len(before.Lines) {
		t.Fatalf("recalled lines = %d, want %d", len(after.Lines), len(before.Lines))
	}
	for i := range before.Lines {
		if after.Lines[i] != before.Lines[i] {
			t.Errorf("line %d = %+v, want %+v", i, after.Lines[i], before.Lines[i])
		}
	}
	if after.CustomerID == nil || *after.CustomerID != customer.ID {
		t.Error("customer binding lost across hold/recall")
	}

	// A recalled bill is consumed; recalling it again must fail.
	env.cart.ClearCart(terminal)
	if _, err := env.cart.Recall(terminal, held.ID); !errors.Is(err, ErrHeldBillNotFound) {
		t.Errorf("second recall error = %v, want ErrHeldBillNotFound", err)
	}
}

func TestRecallRequiresEmptyCart(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)
	env.addLine(t, terminal, item.ID, 1)
	held, err := env.cart.Hold(terminal, HoldBillRequest{})
	if err != nil {
		t.Fatalf("Hold: %v", err)
	}

	env.addLine(t, terminal, item.ID, 2)
	if _, err := env.cart.Recall(terminal, held.ID); !errors.Is(err, ErrCartNotEmpty) {
		t.Fatalf("Recall error = %v, want ErrCartNotEmpty", err)
	}
}

func TestHoldEmptyCartRejected(t *testing.T) {
	env := newTestEnv()
	if _, err := env.cart.Hold(terminal, HoldBillRequest{}); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("Hold error = %v, want ErrCartEmpty", err)
	}
}

// Carts are isolated per terminal.
func TestCartsIsolatedPerTerminal(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)

	env.addLine(t, "terminal-1", item.ID, 2)
	env.addLine(t, "terminal-2", item.ID, 3)

	if got := len(env.cart.ActiveCart("terminal-1").Lines); got != 1 {
		t.Errorf("terminal-1 lines = %d, want 1", got)
	}
	if env.cart.ActiveCart("terminal-1").Lines[0].Quantity != 2 {
		t.Error("terminal-1 quantity leaked from terminal-2")
	}
	if env.cart.ActiveCart("terminal-2").Lines[0].Quantity != 3 {
		t.Error("terminal-2 quantity leaked from terminal-1")
	}
}

func TestSetCustomerRejectsSupplier(t *testing.T) {
	env := newTestEnv()
	supplier := env.seedParty(t, models.PartyTypeSupplier, "MedSupply Co")

	_, err := env.cart.SetCustomer(terminal, &supplier.ID)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("SetCustomer error = %v, want ErrValidation", err)
	}
}

func TestRemoveLine(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	itemY := env.seedItem(t, "ItemY", 10000, 5)
	env.addLine(t, terminal, itemX.ID, 1)
	env.addLine(t, terminal, itemY.ID, 1)

	cart, err := env.cart.RemoveLine(terminal, 0)
	if err != nil {
		t.Fatalf("RemoveLine: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].ItemID != itemY.ID {
		t.Errorf("remaining line = %+v, want ItemY only", cart.Lines)
	}

	if _, err := env.cart.RemoveLine(terminal, 5); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("out-of-range remove error = %v, want ErrLineNotFound", err)
	}
}
