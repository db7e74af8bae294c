package services

import (
	"errors"
	"testing"

	"pharmaledger_backend/internal/models"
)

func TestWriteOffReducesStock(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "Cough Syrup", 9000, 10)

	updated, err := env.inventory.WriteOff(item.ID, nil, WriteOffRequest{
		Quantity: 3,
		Reason:   "expired batch",
	})
	if err != nil {
		t.Fatalf("WriteOff: %v", err)
	}
	if updated.CurrentStock != 7 {
		t.Errorf("stock = %d, want 7", updated.CurrentStock)
	}
}

func TestWriteOffCannotGoNegative(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "Cough Syrup", 9000, 2)

	_, err := env.inventory.WriteOff(item.ID, nil, WriteOffRequest{
		Quantity: 3,
		Reason:   "water damage",
	})
	if !errors.Is(err, ErrStockConflict) {
		t.Fatalf("WriteOff error = %v, want ErrStockConflict", err)
	}
	if got := env.stockOf(t, item.ID); got != 2 {
		t.Errorf("stock = %d, want 2 (unchanged)", got)
	}
}

func TestWriteOffRequiresReasonAndPositiveQty(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "Cough Syrup", 9000, 5)

	if _, err := env.inventory.WriteOff(item.ID, nil, WriteOffRequest{Quantity: 0, Reason: "x"}); !errors.Is(err, ErrInvalidStockQty) {
		t.Errorf("zero qty error = %v, want ErrInvalidStockQty", err)
	}
	if _, err := env.inventory.WriteOff(item.ID, nil, WriteOffRequest{Quantity: 1}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing reason error = %v, want ErrValidation", err)
	}
}

// A goods receipt raises stock and books the cost onto the supplier ledger.
func TestReceiveGoodsChargesSupplier(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "Paracetamol", 2000, 5)
	supplier := env.seedParty(t, models.PartyTypeSupplier, "MedSupply Co")

	received, err := env.inventory.ReceiveGoods(nil, ReceiveGoodsRequest{
		SupplierID: &supplier.ID,
		Lines: []GRNLineRequest{
			{ItemID: &item.ID, Quantity: 20, UnitCost: 1200},
		},
	})
	if err != nil {
		t.Fatalf("ReceiveGoods: %v", err)
	}
	if len(received) != 1 || received[0].CurrentStock != 25 {
		t.Fatalf("received = %+v, want stock 25", received)
	}
	if got := env.balanceOf(t, supplier.ID); got != 24000 {
		t.Errorf("supplier balance = %d, want 24000", got)
	}

	entries, _, err := env.party.GetLedger(supplier.ID, 1, 10)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(entries) != 1 || entries[0].TxnMode != models.TxnModeAddCharge {
		t.Errorf("ledger entries = %+v, want one ADD_CHARGE", entries)
	}
}

func TestReceiveGoodsCreatesNewItem(t *testing.T) {
	env := newTestEnv()

	received, err := env.inventory.ReceiveGoods(nil, ReceiveGoodsRequest{
		Lines: []GRNLineRequest{
			{
				NewItem:  &CreateItemRequest{Name: "Insulin Pen", MRP: 65000},
				Quantity: 10,
				UnitCost: 48000,
			},
		},
	})
	if err != nil {
		t.Fatalf("ReceiveGoods: %v", err)
	}
	if received[0].CurrentStock != 10 {
		t.Errorf("stock = %d, want 10", received[0].CurrentStock)
	}
	if received[0].PurchasePrice != 48000 {
		t.Errorf("purchase price = %d, want 48000 (from unit cost)", received[0].PurchasePrice)
	}

	item, err := env.inventory.GetItemByID(received[0].ID)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	if item.Name != "Insulin Pen" {
		t.Errorf("name = %q, want Insulin Pen", item.Name)
	}
}

func TestReceiveGoodsRejectsSupplierOfWrongType(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "Paracetamol", 2000, 5)
	customer := env.seedParty(t, models.PartyTypeCustomer, "Asha Rao")

	_, err := env.inventory.ReceiveGoods(nil, ReceiveGoodsRequest{
		SupplierID: &customer.ID,
		Lines:      []GRNLineRequest{{ItemID: &item.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ReceiveGoods error = %v, want ErrValidation", err)
	}
}

// Item updates change catalog details only; the stock counter is owned by
// checkout, returns, write-offs and receipts.
func TestUpdateItemNeverTouchesStock(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "Paracetamol", 2000, 5)

	newMRP := int64(2500)
	minStock := 3
	updated, err := env.inventory.UpdateItem(item.ID, UpdateItemRequest{
		MRP:      &newMRP,
		MinStock: &minStock,
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.MRP != 2500 || updated.MinStock != 3 {
		t.Errorf("updated = %+v, want MRP 2500 and MinStock 3", updated)
	}
	if got := env.stockOf(t, item.ID); got != 5 {
		t.Errorf("stock = %d, want 5 (untouched)", got)
	}
}

func TestGetItemsLowStockFilter(t *testing.T) {
	env := newTestEnv()
	if _, err := env.inventory.CreateItem(nil, CreateItemRequest{Name: "Low", MRP: 1000, InitialStock: 2, MinStock: 5}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if _, err := env.inventory.CreateItem(nil, CreateItemRequest{Name: "Plenty", MRP: 1000, InitialStock: 50, MinStock: 5}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	items, total, err := env.inventory.GetItems(models.InventoryFilters{LowStock: true})
	if err != nil {
		t.Fatalf("GetItems: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Name != "Low" {
		t.Errorf("low-stock result = %+v (total %d), want just Low", items, total)
	}
}
