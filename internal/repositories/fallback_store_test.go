package repositories

import (
	"errors"
	"testing"

	"pharmaledger_backend/internal/models"
)

func seedStoreItem(t *testing.T, store *FallbackStore, name string, stock int) int64 {
	t.Helper()
	item := &models.InventoryItem{Name: name, MRP: 5000, CurrentStock: stock}
	var id int64
	err := store.InTx(func(executor SQLExecutor) error {
		created, err := store.CreateItem(executor, item)
		id = created
		return err
	})
	if err != nil {
		t.Fatalf("seedStoreItem(%s): %v", name, err)
	}
	return id
}

// An error inside InTx must leave the store exactly as it was.
func TestInTxRollbackRestoresState(t *testing.T) {
	store := NewFallbackStore()
	itemID := seedStoreItem(t, store, "ItemX", 10)

	boom := errors.New("boom")
	err := store.InTx(func(executor SQLExecutor) error {
		if _, err := store.AdjustStock(executor, itemID, -4); err != nil {
			return err
		}
		if _, err := store.CreateParty(executor, &models.PartyAccount{
			PartyType: models.PartyTypeCustomer,
			FullName:  "Ghost",
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}

	item, err := store.GetItemByID(itemID)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if item.CurrentStock != 10 {
		t.Errorf("stock = %d, want 10 (rolled back)", item.CurrentStock)
	}
	_, total, err := store.GetParties(models.PartyFilters{})
	if err != nil {
		t.Fatalf("GetParties: %v", err)
	}
	if total != 0 {
		t.Errorf("parties = %d, want 0 (rolled back)", total)
	}
}

func TestInTxCommitKeepsState(t *testing.T) {
	store := NewFallbackStore()
	itemID := seedStoreItem(t, store, "ItemX", 10)

	err := store.InTx(func(executor SQLExecutor) error {
		_, err := store.AdjustStock(executor, itemID, -4)
		return err
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	item, _ := store.GetItemByID(itemID)
	if item.CurrentStock != 6 {
		t.Errorf("stock = %d, want 6", item.CurrentStock)
	}
}

// The conditional adjust rejects any delta that would take stock negative.
func TestAdjustStockNeverNegative(t *testing.T) {
	store := NewFallbackStore()
	itemID := seedStoreItem(t, store, "ItemX", 3)

	err := store.InTx(func(executor SQLExecutor) error {
		_, err := store.AdjustStock(executor, itemID, -4)
		return err
	})
	if !errors.Is(err, ErrStockConflict) {
		t.Fatalf("InTx error = %v, want ErrStockConflict", err)
	}
	item, _ := store.GetItemByID(itemID)
	if item.CurrentStock != 3 {
		t.Errorf("stock = %d, want 3", item.CurrentStock)
	}
}

func TestNextInvoiceSeqMonotonic(t *testing.T) {
	store := NewFallbackStore()

	var first, second int64
	err := store.InTx(func(executor SQLExecutor) error {
		seq, err := store.NextInvoiceSeq(executor)
		if err != nil {
			return err
		}
		first = seq
		_, err = store.CreateSale(executor, &models.Sale{InvoiceSeq: seq, InvoiceNo: "INV-000001"})
		return err
	})
	if err != nil {
		t.Fatalf("first InTx: %v", err)
	}
	err = store.InTx(func(executor SQLExecutor) error {
		seq, err := store.NextInvoiceSeq(executor)
		second = seq
		return err
	})
	if err != nil {
		t.Fatalf("second InTx: %v", err)
	}
	if first != 1 || second != 2 {
		t.Errorf("sequences = %d, %d, want 1, 2", first, second)
	}
}

// Popping a held bill consumes it.
func TestPopHeldBillConsumes(t *testing.T) {
	store := NewFallbackStore()

	bill := &models.HeldBill{
		ID:         "HB-test",
		TerminalID: "terminal-1",
		Lines:      []models.CartLine{{ItemID: 1, ItemName: "ItemX", Quantity: 2, UnitPrice: 5000, LineTotal: 10000}},
	}
	if err := store.InTx(func(executor SQLExecutor) error {
		return store.CreateHeldBill(executor, bill)
	}); err != nil {
		t.Fatalf("CreateHeldBill: %v", err)
	}

	err := store.InTx(func(executor SQLExecutor) error {
		popped, err := store.PopHeldBill(executor, "HB-test")
		if err != nil {
			return err
		}
		if len(popped.Lines) != 1 || popped.Lines[0].Quantity != 2 {
			t.Errorf("popped lines = %+v, want the held line back", popped.Lines)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("pop InTx: %v", err)
	}

	err = store.InTx(func(executor SQLExecutor) error {
		_, err := store.PopHeldBill(executor, "HB-test")
		return err
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("second pop error = %v, want ErrNotFound", err)
	}
}

func TestCreateOperatorDuplicateCode(t *testing.T) {
	store := NewFallbackStore()

	op := &models.Operator{Code: "counter1", FullName: "A", PinHash: "x"}
	if err := store.InTx(func(executor SQLExecutor) error {
		_, err := store.CreateOperator(executor, op)
		return err
	}); err != nil {
		t.Fatalf("first CreateOperator: %v", err)
	}

	err := store.InTx(func(executor SQLExecutor) error {
		_, err := store.CreateOperator(executor, &models.Operator{Code: "counter1", FullName: "B", PinHash: "y"})
		return err
	})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate code error = %v, want ErrDuplicateKey", err)
	}
}
