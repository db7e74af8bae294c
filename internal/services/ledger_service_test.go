package services

import (
	"errors"
	"testing"

	"pharmaledger_backend/internal/models"
)

const terminal = "terminal-1"

// Walk-in sale, exact payment: 2×ItemX (₹50) + 1×ItemY (₹100) tendered ₹200.
func TestCheckoutWalkInExactPayment(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	itemY := env.seedItem(t, "ItemY", 10000, 5)
	env.addLine(t, terminal, itemX.ID, 2)
	env.addLine(t, terminal, itemY.ID, 1)

	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 20000,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	sale := resp.Sale
	if sale.RoundedTotal != 20000 {
		t.Errorf("RoundedTotal = %d, want 20000", sale.RoundedTotal)
	}
	if sale.BalanceDue != 0 {
		t.Errorf("BalanceDue = %d, want 0", sale.BalanceDue)
	}
	if sale.AmountPaid+sale.BalanceDue != sale.RoundedTotal {
		t.Errorf("AmountPaid(%d) + BalanceDue(%d) != RoundedTotal(%d)", sale.AmountPaid, sale.BalanceDue, sale.RoundedTotal)
	}
	if resp.ChangeDue != 0 {
		t.Errorf("ChangeDue = %d, want 0", resp.ChangeDue)
	}
	if sale.InvoiceNo != "INV-000001" {
		t.Errorf("InvoiceNo = %q, want INV-000001", sale.InvoiceNo)
	}
	if got := env.stockOf(t, itemX.ID); got != 8 {
		t.Errorf("ItemX stock = %d, want 8", got)
	}
	if got := env.stockOf(t, itemY.ID); got != 4 {
		t.Errorf("ItemY stock = %d, want 4", got)
	}
	if len(env.cart.ActiveCart(terminal).Lines) != 0 {
		t.Error("cart not cleared after checkout")
	}
}

// Walk-in short payment must fail and leave stock and cart untouched.
func TestCheckoutInsufficientPaymentWalkIn(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	itemY := env.seedItem(t, "ItemY", 10000, 5)
	env.addLine(t, terminal, itemX.ID, 2)
	env.addLine(t, terminal, itemY.ID, 1)

	_, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 15000,
	})
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("Checkout error = %v, want ErrInsufficientPayment", err)
	}
	if got := env.stockOf(t, itemX.ID); got != 10 {
		t.Errorf("ItemX stock = %d, want 10 (unchanged)", got)
	}
	if got := env.stockOf(t, itemY.ID); got != 5 {
		t.Errorf("ItemY stock = %d, want 5 (unchanged)", got)
	}
	if len(env.cart.ActiveCart(terminal).Lines) != 2 {
		t.Error("cart should be preserved after a failed checkout")
	}
}

// A bound customer may carry the shortfall as balance due.
func TestCheckoutCreditCustomer(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	itemY := env.seedItem(t, "ItemY", 10000, 5)
	customer := env.seedParty(t, models.PartyTypeCustomer, "Asha Rao")
	env.addLine(t, terminal, itemX.ID, 2)
	env.addLine(t, terminal, itemY.ID, 1)

	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		CustomerID:     &customer.ID,
		PaymentMode:    models.PaymentModeCredit,
		AmountTendered: 15000,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if resp.Sale.BalanceDue != 5000 {
		t.Errorf("BalanceDue = %d, want 5000", resp.Sale.BalanceDue)
	}
	if got := env.balanceOf(t, customer.ID); got != 5000 {
		t.Errorf("customer balance = %d, want 5000", got)
	}

	entries, _, err := env.party.GetLedger(customer.ID, 1, 10)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if entries[0].TxnMode != models.TxnModeSaleOnCredit {
		t.Errorf("TxnMode = %q, want %q", entries[0].TxnMode, models.TxnModeSaleOnCredit)
	}
	if entries[0].BalanceAfter != 5000 {
		t.Errorf("BalanceAfter = %d, want 5000", entries[0].BalanceAfter)
	}
}

// Returning one unit restocks it and refunds the snapshotted unit price.
func TestReturnRestocksAndRefunds(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	env.addLine(t, terminal, itemX.ID, 2)
	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 10000,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	ret, err := env.ledger.ProcessReturn(nil, ProcessReturnRequest{
		SaleID: resp.Sale.ID,
		Lines:  []ReturnLineRequest{{ItemID: itemX.ID, ReturnedQty: 1}},
	})
	if err != nil {
		t.Fatalf("ProcessReturn: %v", err)
	}
	if ret.RefundAmount != 5000 {
		t.Errorf("RefundAmount = %d, want 5000", ret.RefundAmount)
	}
	if got := env.stockOf(t, itemX.ID); got != 9 {
		t.Errorf("ItemX stock = %d, want 9", got)
	}
}

// A return against a credit sale reduces the customer's balance.
func TestReturnReducesCustomerBalance(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	customer := env.seedParty(t, models.PartyTypeCustomer, "Asha Rao")
	env.addLine(t, terminal, itemX.ID, 2)
	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		CustomerID:     &customer.ID,
		PaymentMode:    models.PaymentModeCredit,
		AmountTendered: 0,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if got := env.balanceOf(t, customer.ID); got != 10000 {
		t.Fatalf("customer balance after credit sale = %d, want 10000", got)
	}

	if _, err := env.ledger.ProcessReturn(nil, ProcessReturnRequest{
		SaleID: resp.Sale.ID,
		Lines:  []ReturnLineRequest{{ItemID: itemX.ID, ReturnedQty: 1}},
	}); err != nil {
		t.Fatalf("ProcessReturn: %v", err)
	}
	if got := env.balanceOf(t, customer.ID); got != 5000 {
		t.Errorf("customer balance after return = %d, want 5000", got)
	}
}

// Cumulative returned quantity can never exceed what was purchased.
func TestReturnRejectsExcessQuantity(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	env.addLine(t, terminal, itemX.ID, 3)
	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 15000,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if _, err := env.ledger.ProcessReturn(nil, ProcessReturnRequest{
		SaleID: resp.Sale.ID,
		Lines:  []ReturnLineRequest{{ItemID: itemX.ID, ReturnedQty: 2}},
	}); err != nil {
		t.Fatalf("first return: %v", err)
	}

	// 2 already returned of 3 purchased, so 2 more must be rejected.
	_, err = env.ledger.ProcessReturn(nil, ProcessReturnRequest{
		SaleID: resp.Sale.ID,
		Lines:  []ReturnLineRequest{{ItemID: itemX.ID, ReturnedQty: 2}},
	})
	if !errors.Is(err, ErrInvalidReturnQty) {
		t.Fatalf("second return error = %v, want ErrInvalidReturnQty", err)
	}
	if got := env.stockOf(t, itemX.ID); got != 9 {
		t.Errorf("ItemX stock = %d, want 9 (7 after sale, +2 returned)", got)
	}
}

func TestReturnWithNoQuantityRejected(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	env.addLine(t, terminal, itemX.ID, 1)
	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 5000,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	_, err = env.ledger.ProcessReturn(nil, ProcessReturnRequest{
		SaleID: resp.Sale.ID,
		Lines:  []ReturnLineRequest{{ItemID: itemX.ID, ReturnedQty: 0}},
	})
	if !errors.Is(err, ErrEmptyReturn) {
		t.Fatalf("ProcessReturn error = %v, want ErrEmptyReturn", err)
	}
}

// Two terminals race for the same stock: the loser's checkout aborts with no
// partial stock mutation.
func TestCheckoutStockConflictRollsBack(t *testing.T) {
	env := newTestEnv()
	itemX := env.seedItem(t, "ItemX", 5000, 10)
	itemY := env.seedItem(t, "ItemY", 10000, 5)

	env.addLine(t, "terminal-1", itemX.ID, 10)
	// Terminal 2's cart lists ItemY first so its decrement lands before the
	// conflicting ItemX decrement; rollback must undo it.
	env.addLine(t, "terminal-2", itemY.ID, 1)
	env.addLine(t, "terminal-2", itemX.ID, 10)

	if _, err := env.ledger.Checkout("terminal-1", nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 50000,
	}); err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	_, err := env.ledger.Checkout("terminal-2", nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 60000,
	})
	if !errors.Is(err, ErrStockConflict) {
		t.Fatalf("second checkout error = %v, want ErrStockConflict", err)
	}
	if got := env.stockOf(t, itemX.ID); got != 0 {
		t.Errorf("ItemX stock = %d, want 0", got)
	}
	if got := env.stockOf(t, itemY.ID); got != 5 {
		t.Errorf("ItemY stock = %d, want 5 (decrement rolled back)", got)
	}
	if len(env.cart.ActiveCart("terminal-2").Lines) != 2 {
		t.Error("losing terminal's cart should be preserved")
	}
}

// Bill totals are rounded to the whole rupee, half away from zero.
func TestCheckoutRoundsTotalToRupee(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "Syrup", 4975, 3)
	env.addLine(t, terminal, item.ID, 1)

	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeUPI,
		AmountTendered: 5000,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if resp.Sale.RoundedTotal != 5000 {
		t.Errorf("RoundedTotal = %d, want 5000", resp.Sale.RoundedTotal)
	}
	if resp.Sale.SubTotal != 4975 {
		t.Errorf("SubTotal = %d, want 4975", resp.Sale.SubTotal)
	}
}

// A discount larger than the subtotal clamps to the subtotal.
func TestCheckoutDiscountClamped(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 3)
	env.addLine(t, terminal, item.ID, 1)

	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 0,
		Discount:       9999999,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if resp.Sale.RoundedTotal != 0 {
		t.Errorf("RoundedTotal = %d, want 0", resp.Sale.RoundedTotal)
	}
	if resp.Sale.Discount != 5000 {
		t.Errorf("Discount = %d, want 5000 (clamped)", resp.Sale.Discount)
	}
}

// Invoice numbers are strictly sequential across checkouts.
func TestInvoiceNumbersSequential(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)

	want := []string{"INV-000001", "INV-000002", "INV-000003"}
	for i, wantNo := range want {
		env.addLine(t, terminal, item.ID, 1)
		resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
			PaymentMode:    models.PaymentModeCash,
			AmountTendered: 5000,
		})
		if err != nil {
			t.Fatalf("checkout %d: %v", i+1, err)
		}
		if resp.Sale.InvoiceNo != wantNo {
			t.Errorf("checkout %d InvoiceNo = %q, want %q", i+1, resp.Sale.InvoiceNo, wantNo)
		}
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	env := newTestEnv()
	_, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 5000,
	})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("Checkout error = %v, want ErrCartEmpty", err)
	}
}

func TestCheckoutInvalidPaymentMode(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)
	env.addLine(t, terminal, item.ID, 1)

	_, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    "cheque",
		AmountTendered: 5000,
	})
	if !errors.Is(err, ErrInvalidPaymentMode) {
		t.Fatalf("Checkout error = %v, want ErrInvalidPaymentMode", err)
	}
}

// GST is informational: it is backed out of the MRP, never added on top.
func TestCheckoutGSTInformational(t *testing.T) {
	env := newTestEnv()
	item, err := env.inventory.CreateItem(nil, CreateItemRequest{
		Name:         "Tablet",
		MRP:          11200,
		GSTPct:       12,
		InitialStock: 5,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	env.addLine(t, terminal, item.ID, 1)

	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 11200,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if resp.Sale.RoundedTotal != 11200 {
		t.Errorf("RoundedTotal = %d, want 11200 (GST not added on top)", resp.Sale.RoundedTotal)
	}
	if resp.Sale.GSTAmount != 1344 {
		t.Errorf("GSTAmount = %d, want 1344", resp.Sale.GSTAmount)
	}
}

func TestGetSaleByInvoiceNo(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)
	env.addLine(t, terminal, item.ID, 1)
	resp, err := env.ledger.Checkout(terminal, nil, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 5000,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	sale, err := env.ledger.GetSaleByInvoiceNo(resp.Sale.InvoiceNo)
	if err != nil {
		t.Fatalf("GetSaleByInvoiceNo: %v", err)
	}
	if sale.ID != resp.Sale.ID {
		t.Errorf("sale ID = %d, want %d", sale.ID, resp.Sale.ID)
	}
	if len(sale.Lines) != 1 {
		t.Errorf("sale lines = %d, want 1", len(sale.Lines))
	}

	if _, err := env.ledger.GetSaleByInvoiceNo("INV-999999"); !errors.Is(err, ErrSaleNotFound) {
		t.Errorf("unknown invoice error = %v, want ErrSaleNotFound", err)
	}
}
