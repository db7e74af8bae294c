package repositories

import (
	"sort"
	"time"

	"pharmaledger_backend/internal/models"
)

// Sale, return, held-bill, audit and operator methods of FallbackStore.
// Same locking discipline as fallback_store.go.

// --- SaleRepository ---

func (s *FallbackStore) NextInvoiceSeq(_ SQLExecutor) (int64, error) {
	var max int64
	for _, sale := range s.sales {
		if sale.InvoiceSeq > max {
			max = sale.InvoiceSeq
		}
	}
	return max + 1, nil
}

func (s *FallbackStore) CreateSale(_ SQLExecutor, sale *models.Sale) (int64, error) {
	sale.ID = s.nextID("sales")
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	stored := *sale
	stored.Lines = nil // lines live in saleLines
	s.sales[sale.ID] = stored
	return sale.ID, nil
}

func (s *FallbackStore) CreateSaleLine(_ SQLExecutor, line *models.SaleLine) (int64, error) {
	line.ID = s.nextID("sale_lines")
	s.saleLines[line.SaleID] = append(s.saleLines[line.SaleID], *line)
	return line.ID, nil
}

func (s *FallbackStore) GetSaleByID(id int64) (*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sale, nil
}

func (s *FallbackStore) GetSaleByInvoiceNo(invoiceNo string) (*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sale := range s.sales {
		if sale.InvoiceNo == invoiceNo {
			found := sale
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FallbackStore) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Sale{}
	for _, sale := range s.sales {
		if filters.CustomerID != nil && (sale.CustomerID == nil || *sale.CustomerID != *filters.CustomerID) {
			continue
		}
		if filters.Date != nil && *filters.Date != "" && sale.CreatedAt.Format("2006-01-02") != *filters.Date {
			continue
		}
		matched = append(matched, sale)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].InvoiceSeq > matched[j].InvoiceSeq })

	total := len(matched)
	start, end := paginate(total, filters.Page, filters.PageSize)
	return matched[start:end], total, nil
}

func (s *FallbackStore) GetSaleLinesBySaleID(saleID int64) ([]models.SaleLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.SaleLine(nil), s.saleLines[saleID]...), nil
}

// --- ReturnRepository ---

func (s *FallbackStore) CreateReturn(_ SQLExecutor, ret *models.SalesReturn) (int64, error) {
	ret.ID = s.nextID("sales_returns")
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = time.Now()
	}
	stored := *ret
	stored.Lines = nil
	s.returns[ret.ID] = stored
	return ret.ID, nil
}

func (s *FallbackStore) CreateReturnLine(_ SQLExecutor, line *models.SalesReturnLine) (int64, error) {
	line.ID = s.nextID("sales_return_lines")
	s.returnLines[line.ReturnID] = append(s.returnLines[line.ReturnID], *line)
	return line.ID, nil
}

func (s *FallbackStore) GetReturns(filters models.ReturnFilters) ([]models.SalesReturn, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.SalesReturn{}
	for _, ret := range s.returns {
		if filters.SaleID != nil && ret.SaleID != *filters.SaleID {
			continue
		}
		matched = append(matched, ret)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	start, end := paginate(total, filters.Page, filters.PageSize)
	return matched[start:end], total, nil
}

func (s *FallbackStore) GetReturnLinesBySaleID(saleID int64) ([]models.SalesReturnLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := []models.SalesReturnLine{}
	for retID, ret := range s.returns {
		if ret.SaleID != saleID {
			continue
		}
		lines = append(lines, s.returnLines[retID]...)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

// --- HeldBillRepository ---

func (s *FallbackStore) CreateHeldBill(_ SQLExecutor, bill *models.HeldBill) error {
	if bill.HeldAt.IsZero() {
		bill.HeldAt = time.Now()
	}
	stored := *bill
	stored.Lines = append([]models.CartLine(nil), bill.Lines...)
	s.heldBills[bill.ID] = stored
	return nil
}

func (s *FallbackStore) PopHeldBill(_ SQLExecutor, id string) (*models.HeldBill, error) {
	bill, ok := s.heldBills[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.heldBills, id)
	return &bill, nil
}

func (s *FallbackStore) GetHeldBills(terminalID string) ([]models.HeldBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bills := []models.HeldBill{}
	for _, bill := range s.heldBills {
		if bill.TerminalID == terminalID {
			bills = append(bills, bill)
		}
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].HeldAt.After(bills[j].HeldAt) })
	return bills, nil
}

// --- AuditRepository ---

func (s *FallbackStore) CreateLog(_ SQLExecutor, entry *models.AuditLog) (int64, error) {
	entry.ID = s.nextID("audit_logs")
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.auditLogs = append(s.auditLogs, *entry)
	return entry.ID, nil
}

func (s *FallbackStore) GetLogs(filters models.AuditFilters) ([]models.AuditLog, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.AuditLog{}
	for _, entry := range s.auditLogs {
		if filters.Action != nil && *filters.Action != "" && entry.Action != *filters.Action {
			continue
		}
		if filters.ActorID != nil && (entry.ActorID == nil || *entry.ActorID != *filters.ActorID) {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	start, end := paginate(total, filters.Page, filters.PageSize)
	return matched[start:end], total, nil
}

// --- OperatorRepository ---

func (s *FallbackStore) CreateOperator(_ SQLExecutor, op *models.Operator) (int64, error) {
	for _, existing := range s.operators {
		if existing.Code == op.Code {
			return 0, ErrDuplicateKey
		}
	}
	op.ID = s.nextID("operators")
	now := time.Now()
	op.CreatedAt = now
	op.UpdatedAt = now
	s.operators[op.ID] = *op
	return op.ID, nil
}

func (s *FallbackStore) GetOperatorByCode(code string) (*models.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, op := range s.operators {
		if op.Code == code {
			found := op
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FallbackStore) GetOperatorByID(id int64) (*models.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, ok := s.operators[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &op, nil
}
