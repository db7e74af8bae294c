package services

import (
	"errors"
	"fmt"
	"time"

	"pharmaledger_backend/internal/models"
	"pharmaledger_backend/internal/repositories"
	"pharmaledger_backend/pkg/utils"
)

// --- Custom Service Errors for Inventory ---
var (
	ErrInvalidStockQty = errors.New("stock quantity must be greater than zero")
)

// --- Inventory DTOs ---

// CreateItemRequest supports quick-add at the counter: name and MRP are
// enough, everything else defaults.
type CreateItemRequest struct {
	Name          string     `json:"name" binding:"required"`
	GenericName   *string    `json:"generic_name"`
	BatchNumber   *string    `json:"batch_number"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	InitialStock  int        `json:"initial_stock"`
	MinStock      int        `json:"min_stock"`
	PurchasePrice int64      `json:"purchase_price"`
	MRP           int64      `json:"mrp" binding:"required,gt=0"`
	GSTPct        float64    `json:"gst_pct"`
}

type UpdateItemRequest struct {
	Name          *string    `json:"name"`
	GenericName   *string    `json:"generic_name"`
	BatchNumber   *string    `json:"batch_number"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	MinStock      *int       `json:"min_stock"`
	PurchasePrice *int64     `json:"purchase_price"`
	MRP           *int64     `json:"mrp"`
	GSTPct        *float64   `json:"gst_pct"`
}

type WriteOffRequest struct {
	Quantity int    `json:"quantity" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// GRNLineRequest is one line of a goods received note. When ItemID is nil a
// new catalog item is created from the embedded details.
type GRNLineRequest struct {
	ItemID   *int64             `json:"item_id"`
	NewItem  *CreateItemRequest `json:"new_item"`
	Quantity int                `json:"quantity" binding:"required"`
	UnitCost int64              `json:"unit_cost"`
}

// ReceiveGoodsRequest books incoming stock from a supplier. The total cost is
// charged to the supplier's account so the payable shows up on their ledger.
type ReceiveGoodsRequest struct {
	SupplierID *int64           `json:"supplier_id"`
	Lines      []GRNLineRequest `json:"lines" binding:"required"`
	Note       *string          `json:"note"`
}

// --- InventoryService Interface ---

// InventoryService manages the medicine catalog. Stock moves through
// checkout, returns, write-offs and goods receipts; plain item updates never
// touch the stock counter.
type InventoryService interface {
	CreateItem(operatorID *int64, req CreateItemRequest) (*models.InventoryItem, error)
	GetItemByID(itemID int64) (*models.InventoryItem, error)
	GetItems(filters models.InventoryFilters) ([]models.InventoryItem, int, error)
	UpdateItem(itemID int64, req UpdateItemRequest) (*models.InventoryItem, error)
	WriteOff(itemID int64, operatorID *int64, req WriteOffRequest) (*models.InventoryItem, error)
	ReceiveGoods(operatorID *int64, req ReceiveGoodsRequest) ([]models.InventoryItem, error)
}

// --- inventoryService Implementation ---

type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	partyRepo     repositories.PartyRepository
	audit         AuditService
	runner        repositories.TxRunner
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	inventoryRepo repositories.InventoryRepository,
	partyRepo repositories.PartyRepository,
	audit AuditService,
	runner repositories.TxRunner,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		partyRepo:     partyRepo,
		audit:         audit,
		runner:        runner,
	}
}

func itemFromCreateRequest(req CreateItemRequest) (*models.InventoryItem, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrValidation)
	}
	if req.MRP <= 0 {
		return nil, fmt.Errorf("%w: MRP must be greater than zero", ErrValidation)
	}
	if req.InitialStock < 0 || req.MinStock < 0 || req.PurchasePrice < 0 || req.GSTPct < 0 {
		return nil, fmt.Errorf("%w: stock, prices and GST must not be negative", ErrValidation)
	}
	return &models.InventoryItem{
		Name:          req.Name,
		GenericName:   req.GenericName,
		BatchNumber:   req.BatchNumber,
		ExpiryDate:    req.ExpiryDate,
		CurrentStock:  req.InitialStock,
		MinStock:      req.MinStock,
		PurchasePrice: req.PurchasePrice,
		MRP:           req.MRP,
		GSTPct:        req.GSTPct,
	}, nil
}

func (s *inventoryService) CreateItem(operatorID *int64, req CreateItemRequest) (*models.InventoryItem, error) {
	item, err := itemFromCreateRequest(req)
	if err != nil {
		return nil, err
	}
	err = s.runner.InTx(func(executor repositories.SQLExecutor) error {
		_, err := s.inventoryRepo.CreateItem(executor, item)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	s.audit.Record(operatorID, "item_created",
		fmt.Sprintf("%s at %s, opening stock %d", item.Name, utils.FormatRupees(item.MRP), item.CurrentStock))
	return item, nil
}

func (s *inventoryService) GetItemByID(itemID int64) (*models.InventoryItem, error) {
	item, err := s.inventoryRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item ID %d", ErrItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to fetch item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *inventoryService) GetItems(filters models.InventoryFilters) ([]models.InventoryItem, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	items, totalCount, err := s.inventoryRepo.GetItems(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get inventory items: %w", err)
	}
	return items, totalCount, nil
}

func (s *inventoryService) UpdateItem(itemID int64, req UpdateItemRequest) (*models.InventoryItem, error) {
	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: item name must not be empty", ErrValidation)
		}
		item.Name = *req.Name
	}
	if req.GenericName != nil {
		item.GenericName = req.GenericName
	}
	if req.BatchNumber != nil {
		item.BatchNumber = req.BatchNumber
	}
	if req.ExpiryDate != nil {
		item.ExpiryDate = req.ExpiryDate
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return nil, fmt.Errorf("%w: min stock must not be negative", ErrValidation)
		}
		item.MinStock = *req.MinStock
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return nil, fmt.Errorf("%w: purchase price must not be negative", ErrValidation)
		}
		item.PurchasePrice = *req.PurchasePrice
	}
	if req.MRP != nil {
		if *req.MRP <= 0 {
			return nil, fmt.Errorf("%w: MRP must be greater than zero", ErrValidation)
		}
		item.MRP = *req.MRP
	}
	if req.GSTPct != nil {
		if *req.GSTPct < 0 {
			return nil, fmt.Errorf("%w: GST percentage must not be negative", ErrValidation)
		}
		item.GSTPct = *req.GSTPct
	}
	err = s.runner.InTx(func(executor repositories.SQLExecutor) error {
		return s.inventoryRepo.UpdateItem(executor, item)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *inventoryService) WriteOff(itemID int64, operatorID *int64, req WriteOffRequest) (*models.InventoryItem, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStockQty, req.Quantity)
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: write-off reason is required", ErrValidation)
	}
	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}

	err = s.runner.InTx(func(executor repositories.SQLExecutor) error {
		newStock, err := s.inventoryRepo.AdjustStock(executor, itemID, -req.Quantity)
		if err != nil {
			if errors.Is(err, repositories.ErrStockConflict) {
				return fmt.Errorf("%w: %s", ErrStockConflict, item.Name)
			}
			return fmt.Errorf("failed to write off stock for item %d: %w", itemID, err)
		}
		item.CurrentStock = newStock
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(operatorID, "stock_write_off",
		fmt.Sprintf("%d x %s written off: %s", req.Quantity, item.Name, req.Reason))
	return item, nil
}

func (s *inventoryService) ReceiveGoods(operatorID *int64, req ReceiveGoodsRequest) ([]models.InventoryItem, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: goods receipt has no lines", ErrValidation)
	}
	var supplier *models.PartyAccount
	if req.SupplierID != nil {
		party, err := s.partyRepo.GetPartyByID(*req.SupplierID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: party ID %d", ErrPartyNotFound, *req.SupplierID)
			}
			return nil, fmt.Errorf("failed to fetch supplier %d: %w", *req.SupplierID, err)
		}
		if party.PartyType != models.PartyTypeSupplier {
			return nil, fmt.Errorf("%w: party %d is not a supplier", ErrValidation, *req.SupplierID)
		}
		supplier = party
	}

	type grnLine struct {
		existing *models.InventoryItem
		newItem  *models.InventoryItem
		quantity int
		cost     int64
	}
	lines := make([]grnLine, 0, len(req.Lines))
	var totalCost int64
	for _, reqLine := range req.Lines {
		if reqLine.Quantity <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidStockQty, reqLine.Quantity)
		}
		if reqLine.UnitCost < 0 {
			return nil, fmt.Errorf("%w: unit cost must not be negative", ErrValidation)
		}
		line := grnLine{quantity: reqLine.Quantity, cost: int64(reqLine.Quantity) * reqLine.UnitCost}
		switch {
		case reqLine.ItemID != nil:
			item, err := s.GetItemByID(*reqLine.ItemID)
			if err != nil {
				return nil, err
			}
			line.existing = item
		case reqLine.NewItem != nil:
			newReq := *reqLine.NewItem
			newReq.InitialStock = 0
			item, err := itemFromCreateRequest(newReq)
			if err != nil {
				return nil, err
			}
			if reqLine.UnitCost > 0 {
				item.PurchasePrice = reqLine.UnitCost
			}
			line.newItem = item
		default:
			return nil, fmt.Errorf("%w: each receipt line needs an item_id or new_item", ErrValidation)
		}
		totalCost += line.cost
		lines = append(lines, line)
	}

	received := make([]models.InventoryItem, 0, len(lines))
	err := s.runner.InTx(func(executor repositories.SQLExecutor) error {
		for i := range lines {
			item := lines[i].existing
			if item == nil {
				item = lines[i].newItem
				if _, err := s.inventoryRepo.CreateItem(executor, item); err != nil {
					return fmt.Errorf("failed to create item %s: %w", item.Name, err)
				}
			}
			newStock, err := s.inventoryRepo.AdjustStock(executor, item.ID, lines[i].quantity)
			if err != nil {
				return fmt.Errorf("failed to receive stock for item %d: %w", item.ID, err)
			}
			item.CurrentStock = newStock
			received = append(received, *item)
		}

		if supplier != nil && totalCost > 0 {
			newBalance, err := s.partyRepo.AdjustBalance(executor, supplier.ID, totalCost)
			if err != nil {
				return fmt.Errorf("failed to post payable to supplier %d: %w", supplier.ID, err)
			}
			narrative := fmt.Sprintf("Goods received from %s worth %s", supplier.FullName, utils.FormatRupees(totalCost))
			if req.Note != nil && *req.Note != "" {
				narrative = fmt.Sprintf("%s (%s)", narrative, *req.Note)
			}
			entry := models.PartyLedgerEntry{
				PartyID:      supplier.ID,
				TxnMode:      models.TxnModeAddCharge,
				Amount:       totalCost,
				BalanceAfter: newBalance,
				Narrative:    narrative,
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

	s.audit.Record(operatorID, "goods_received",
		fmt.Sprintf("%d line(s) received, total cost %s", len(received), utils.FormatRupees(totalCost)))
	return received, nil
}
