package services

import (
	"testing"

	"pharmaledger_backend/internal/models"
)

func TestAuditTrailRecordsLedgerActions(t *testing.T) {
	env := newTestEnv()
	item := env.seedItem(t, "ItemX", 5000, 10)
	env.addLine(t, terminal, item.ID, 1)

	operatorID := int64(7)
	if _, err := env.ledger.Checkout(terminal, &operatorID, CheckoutRequest{
		PaymentMode:    models.PaymentModeCash,
		AmountTendered: 5000,
	}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	action := "sale_checkout"
	logs, total, err := env.audit.GetLogs(models.AuditFilters{Action: &action})
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}
	if total != 1 || len(logs) != 1 {
		t.Fatalf("logs = %d (total %d), want 1", len(logs), total)
	}
	if logs[0].ActorID == nil || *logs[0].ActorID != operatorID {
		t.Errorf("ActorID = %v, want %d", logs[0].ActorID, operatorID)
	}
	if logs[0].Details == nil || *logs[0].Details == "" {
		t.Error("audit entry should carry details")
	}
}

func TestAuditFilterByActor(t *testing.T) {
	env := newTestEnv()
	customer := env.seedParty(t, models.PartyTypeCustomer, "Asha Rao")

	opA, opB := int64(1), int64(2)
	for _, op := range []*int64{&opA, &opB, &opB} {
		if _, err := env.party.ApplyTransaction(customer.ID, op, PartyTransactionRequest{
			TxnMode: models.TxnModeAddCharge,
			Amount:  1000,
		}); err != nil {
			t.Fatalf("ApplyTransaction: %v", err)
		}
	}

	_, total, err := env.audit.GetLogs(models.AuditFilters{ActorID: &opB})
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}
	if total != 2 {
		t.Errorf("actor B logs = %d, want 2", total)
	}
}
