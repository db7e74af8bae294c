package services

import (
	"errors"
	"fmt"
	"math"

	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/repositories"
	"pharmaledger_backend/pkg/utils"
)

// --- Custom Service Errors for the Ledger Engine ---
var (
	ErrValidation          = errors.New("validation error")
	ErrInsufficientPayment = errors.New("amount tendered is less than the bill total")
	ErrStockConflict       = errors.New("stock changed between cart and checkout")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrInvalidReturnQty    = errors.New("returned quantity exceeds purchased quantity")
	ErrEmptyReturn         = errors.New("return request contains no quantity")
	ErrInvalidPaymentMode  = errors.New("invalid payment mode")
)

// --- Ledger DTOs ---

// CheckoutRequest commits the terminal's active cart. Amounts are paise.
type CheckoutRequest struct {
	CustomerID     *int64 `json:"customer_id"`
	PaymentMode    string `json:"payment_mode" binding:"required"`
	AmountTendered int64  `json:"amount_tendered"`
	Discount       int64  `json:"discount"`
}

// CheckoutResponse is the committed sale plus the change owed to the payer.
type CheckoutResponse struct {
	Sale      *models.Sale `json:"sale"`
	ChangeDue int64        `json:"change_due"`
}

// ReturnLineRequest names one original sale line and how much of it comes back.
type ReturnLineRequest struct {
	ItemID      int64 `json:"item_id" binding:"required"`
	ReturnedQty int   `json:"returned_qty"`
}

type ProcessReturnRequest struct {
	SaleID int64               `json:"sale_id" binding:"required"`
	Lines  []ReturnLineRequest `json:"lines" binding:"required"`
	Reason string              `json:"reason"`
}

// --- LedgerService Interface ---

// LedgerService is the single entry point through which inventory stock and
// party balances change. Checkout and return each run as one atomic unit:
// either every stock adjustment, record write and balance change lands, or
// none of them do.
type LedgerService interface {
	Checkout(terminalID string, operatorID *int64, req CheckoutRequest) (*CheckoutResponse, error)
	ProcessReturn(operatorID *int64, req ProcessReturnRequest) (*models.SalesReturn, error)
	GetSaleByID(saleID int64) (*models.Sale, error)
	GetSaleByInvoiceNo(invoiceNo string) (*models.Sale, error)
	GetSales(filters models.SaleFilters) ([]models.Sale, int, error)
	GetReturns(filters models.ReturnFilters) ([]models.SalesReturn, int, error)
}

// --- ledgerService Implementation ---

type ledgerService struct {
	cartService CartService
	inventory   repositories.InventoryRepository
	saleRepo    repositories.SaleRepository
	returnRepo  repositories.ReturnRepository
	partyRepo   repositories.PartyRepository
	audit       AuditService
	runner      repositories.TxRunner
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	cartService CartService,
	inventory repositories.InventoryRepository,
	saleRepo repositories.SaleRepository,
	returnRepo repositories.ReturnRepository,
	partyRepo repositories.PartyRepository,
	audit AuditService,
	runner repositories.TxRunner,
) LedgerService {
	return &ledgerService{
		cartService: cartService,
		inventory:   inventory,
		saleRepo:    saleRepo,
		returnRepo:  returnRepo,
		partyRepo:   partyRepo,
		audit:       audit,
		runner:      runner,
	}
}

// gstOf computes the informational GST share of a line total. GST is already
// inside the MRP at this pharmacy; it is backed out for the invoice, never
// added on top of the total.
func gstOf(lineTotal int64, gstPct float64) int64 {
	return int64(math.Round(float64(lineTotal) * gstPct / 100))
}

func (s *ledgerService) Checkout(terminalID string, operatorID *int64, req CheckoutRequest) (*CheckoutResponse, error) {
	cart := s.cartService.ActiveCart(terminalID)
	if len(cart.Lines) == 0 {
		return nil, ErrCartEmpty
	}
	if !models.IsValidPaymentMode(req.PaymentMode) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentMode, req.PaymentMode)
	}
	if req.AmountTendered < 0 || req.Discount < 0 {
		return nil, fmt.Errorf("%w: tendered amount and discount must not be negative", ErrValidation)
	}

	customerID := req.CustomerID
	if customerID == nil {
		customerID = cart.CustomerID
	}
	var customer *models.PartyAccount
	if customerID != nil {
		party, err := s.partyRepo.GetPartyByID(*customerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: party ID %d", ErrPartyNotFound, *customerID)
			}
			return nil, fmt.Errorf("failed to fetch customer %d: %w", *customerID, err)
		}
		if party.PartyType != models.PartyTypeCustomer {
			return nil, fmt.Errorf("%w: party %d is not a customer", ErrValidation, *customerID)
		}
		customer = party
	}

	var subTotal, gstAmount int64
	for _, line := range cart.Lines {
		subTotal += line.LineTotal
		gstAmount += gstOf(line.LineTotal, line.GSTPct)
	}
	discount := req.Discount
	if discount > subTotal {
		discount = subTotal
	}
	roundedTotal := utils.RoundPaiseToRupee(subTotal - discount)

	// A shortfall is only acceptable when a registered customer carries it
	// as balance due; walk-in sales must be fully paid.
	balanceDue := int64(0)
	if req.AmountTendered < roundedTotal {
		if customer == nil {
			return nil, fmt.Errorf("%w: tendered %s, total %s",
				ErrInsufficientPayment, utils.FormatRupees(req.AmountTendered), utils.FormatRupees(roundedTotal))
		}
		balanceDue = roundedTotal - req.AmountTendered
	}
	amountPaid := roundedTotal - balanceDue
	changeDue := req.AmountTendered - amountPaid
	if changeDue < 0 {
		changeDue = 0
	}

	sale := &models.Sale{
		CustomerID:   customerID,
		OperatorID:   operatorID,
		SubTotal:     subTotal,
		GSTAmount:    gstAmount,
		Discount:     discount,
		RoundedTotal: roundedTotal,
		AmountPaid:   amountPaid,
		BalanceDue:   balanceDue,
		PaymentMode:  req.PaymentMode,
	}

	err := s.runner.InTx(func(executor repositories.SQLExecutor) error {
		// Decrement stock first: the conditional update re-validates live
		// stock, so a concurrent sale since add-to-cart aborts the whole
		// checkout with no partial mutation.
		for _, line := range cart.Lines {
			if _, err := s.inventory.AdjustStock(executor, line.ItemID, -line.Quantity); err != nil {
				if errors.Is(err, repositories.ErrStockConflict) || errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrStockConflict, line.ItemName)
				}
				return fmt.Errorf("failed to adjust stock for item %d: %w", line.ItemID, err)
			}
		}

		seq, err := s.saleRepo.NextInvoiceSeq(executor)
		if err != nil {
			return err
		}
		sale.InvoiceSeq = seq
		sale.InvoiceNo = fmt.Sprintf("INV-%06d", seq)

		if _, err := s.saleRepo.CreateSale(executor, sale); err != nil {
			return err
		}
		for _, line := range cart.Lines {
			saleLine := models.SaleLine{
				SaleID:    sale.ID,
				ItemID:    line.ItemID,
				ItemName:  line.ItemName,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				GSTPct:    line.GSTPct,
				LineTotal: line.LineTotal,
			}
			if _, err := s.saleRepo.CreateSaleLine(executor, &saleLine); err != nil {
				return err
			}
			sale.Lines = append(sale.Lines, saleLine)
		}

		if balanceDue > 0 {
			newBalance, err := s.partyRepo.AdjustBalance(executor, *customerID, balanceDue)
			if err != nil {
				return fmt.Errorf("failed to post credit to customer %d: %w", *customerID, err)
			}
			entry := models.PartyLedgerEntry{
				PartyID:      *customerID,
				TxnMode:      models.TxnModeSaleOnCredit,
				Amount:       balanceDue,
				BalanceAfter: newBalance,
				Narrative:    fmt.Sprintf("Credit sale %s of %s to %s", sale.InvoiceNo, utils.FormatRupees(balanceDue), customer.FullName),
			}
			if _, err := s.partyRepo.CreateLedgerEntry(executor, &entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Cart stays untouched so the operator can adjust and retry.
		return nil, err
	}

	s.audit.Record(operatorID, "sale_checkout",
		fmt.Sprintf("%s total %s paid %s due %s via %s",
			sale.InvoiceNo, utils.FormatRupees(roundedTotal), utils.FormatRupees(amountPaid),
			utils.FormatRupees(balanceDue), req.PaymentMode))
	s.cartService.ClearCart(terminalID)

	return &CheckoutResponse{Sale: sale, ChangeDue: changeDue}, nil
}

func (s *ledgerService) ProcessReturn(operatorID *int64, req ProcessReturnRequest) (*models.SalesReturn, error) {
	sale, err := s.saleRepo.GetSaleByID(req.SaleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: sale ID %d", ErrSaleNotFound, req.SaleID)
		}
		return nil, fmt.Errorf("failed to fetch sale %d: %w", req.SaleID, err)
	}
	saleLines, err := s.saleRepo.GetSaleLinesBySaleID(sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale lines for sale %d: %w", sale.ID, err)
	}
	priorLines, err := s.returnRepo.GetReturnLinesBySaleID(sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prior returns for sale %d: %w", sale.ID, err)
	}

	purchasedByItem := make(map[int64]models.SaleLine, len(saleLines))
	for _, line := range saleLines {
		purchasedByItem[line.ItemID] = line
	}
	alreadyReturned := make(map[int64]int, len(priorLines))
	for _, line := range priorLines {
		alreadyReturned[line.ItemID] += line.ReturnedQty
	}

	var totalQty int
	var refundAmount int64
	returnLines := make([]models.SalesReturnLine, 0, len(req.Lines))
	for _, reqLine := range req.Lines {
		if reqLine.ReturnedQty < 0 {
			return nil, fmt.Errorf("%w: item ID %d, quantity %d", ErrInvalidReturnQty, reqLine.ItemID, reqLine.ReturnedQty)
		}
		if reqLine.ReturnedQty == 0 {
			continue
		}
		original, ok := purchasedByItem[reqLine.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: item ID %d was not on invoice %s", ErrInvalidReturnQty, reqLine.ItemID, sale.InvoiceNo)
		}
		if alreadyReturned[reqLine.ItemID]+reqLine.ReturnedQty > original.Quantity {
			return nil, fmt.Errorf("%w: item %s, purchased %d, already returned %d, requested %d",
				ErrInvalidReturnQty, original.ItemName, original.Quantity, alreadyReturned[reqLine.ItemID], reqLine.ReturnedQty)
		}
		lineRefund := int64(reqLine.ReturnedQty) * original.UnitPrice
		totalQty += reqLine.ReturnedQty
		refundAmount += lineRefund
		returnLines = append(returnLines, models.SalesReturnLine{
			ItemID:      original.ItemID,
			ItemName:    original.ItemName,
			ReturnedQty: reqLine.ReturnedQty,
			UnitPrice:   original.UnitPrice,
			LineRefund:  lineRefund,
		})
	}
	if totalQty == 0 {
		return nil, ErrEmptyReturn
	}

	var customer *models.PartyAccount
	if sale.CustomerID != nil {
		customer, err = s.partyRepo.GetPartyByID(*sale.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch customer %d for return: %w", *sale.CustomerID, err)
		}
	}

	ret := &models.SalesReturn{
		SaleID:       sale.ID,
		InvoiceNo:    sale.InvoiceNo,
		RefundAmount: refundAmount,
		OperatorID:   operatorID,
	}
	if req.Reason != "" {
		ret.Reason = &req.Reason
	}

	err = s.runner.InTx(func(executor repositories.SQLExecutor) error {
		// Stock goes back even for items retired at zero since the sale.
		for _, line := range returnLines {
			if _, err := s.inventory.AdjustStock(executor, line.ItemID, line.ReturnedQty); err != nil {
				return fmt.Errorf("failed to restock item %d: %w", line.ItemID, err)
			}
		}
		if _, err := s.returnRepo.CreateReturn(executor, ret); err != nil {
			return err
		}
		for i := range returnLines {
			returnLines[i].ReturnID = ret.ID
			if _, err := s.returnRepo.CreateReturnLine(executor, &returnLines[i]); err != nil {
				return err
			}
			ret.Lines = append(ret.Lines, returnLines[i])
		}

		if customer != nil {
			newBalance, err := s.partyRepo.AdjustBalance(executor, customer.ID, -refundAmount)
			if err != nil {
				return fmt.Errorf("failed to post refund to customer %d: %w", customer.ID, err)
			}
			entry := models.PartyLedgerEntry{
				PartyID:      customer.ID,
				TxnMode:      models.TxnModeReturnRefund,
				Amount:       refundAmount,
				BalanceAfter: newBalance,
				Narrative:    fmt.Sprintf("Refund of %s to %s against %s", utils.FormatRupees(refundAmount), customer.FullName, sale.InvoiceNo),
			}
			if _, err := s.partyRepo.CreateLedgerEntry(executor, &entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(operatorID, "sales_return",
		fmt.Sprintf("%s refunded %s (%d unit(s))", sale.InvoiceNo, utils.FormatRupees(refundAmount), totalQty))
	return ret, nil
}

func (s *ledgerService) GetSaleByID(saleID int64) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(saleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: sale ID %d", ErrSaleNotFound, saleID)
		}
		return nil, fmt.Errorf("failed to fetch sale %d: %w", saleID, err)
	}
	lines, err := s.saleRepo.GetSaleLinesBySaleID(saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for sale %d: %w", saleID, err)
	}
	sale.Lines = lines
	return sale, nil
}

func (s *ledgerService) GetSaleByInvoiceNo(invoiceNo string) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByInvoiceNo(invoiceNo)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: invoice %s", ErrSaleNotFound, invoiceNo)
		}
		return nil, fmt.Errorf("failed to fetch sale %s: %w", invoiceNo, err)
	}
	lines, err := s.saleRepo.GetSaleLinesBySaleID(sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for sale %d: %w", sale.ID, err)
	}
	sale.Lines = lines
	return sale, nil
}

func (s *ledgerService) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	sales, totalCount, err := s.saleRepo.GetSales(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get sales: %w", err)
	}
	return sales, totalCount, nil
}

func (s *ledgerService) GetReturns(filters models.ReturnFilters) ([]models.SalesReturn, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	returns, totalCount, err := s.returnRepo.GetReturns(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get sales returns: %w", err)
	}
	return returns, totalCount, nil
}
