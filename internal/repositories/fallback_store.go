package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pharmaledger_backend/internal/models"
)

// FallbackStore is the in-process persistence gateway used when the remote
// database is unreachable (or deliberately disabled). It implements every
// repository interface plus TxRunner over mutex-guarded maps.
//
// Atomicity: InTx holds the write lock for the whole unit of work, takes a
// snapshot of the state first and restores it if the function fails, so a
// failed checkout or return leaves nothing behind.
//
// Locking discipline: executor-taking mutator methods assume the InTx lock is
// already held and must only be called from inside InTx; read methods take the
// read lock themselves and must not be called from inside InTx.
type FallbackStore struct {
	mu sync.RWMutex

	items       map[int64]models.InventoryItem
	parties     map[int64]models.PartyAccount
	ledger      []models.PartyLedgerEntry
	sales       map[int64]models.Sale
	saleLines   map[int64][]models.SaleLine
	returns     map[int64]models.SalesReturn
	returnLines map[int64][]models.SalesReturnLine
	heldBills   map[string]models.HeldBill
	auditLogs   []models.AuditLog
	operators   map[int64]models.Operator

	nextIDs map[string]int64
}

// NewFallbackStore returns an empty in-process store.
func NewFallbackStore() *FallbackStore {
	return &FallbackStore{
		items:       make(map[int64]models.InventoryItem),
		parties:     make(map[int64]models.PartyAccount),
		sales:       make(map[int64]models.Sale),
		saleLines:   make(map[int64][]models.SaleLine),
		returns:     make(map[int64]models.SalesReturn),
		returnLines: make(map[int64][]models.SalesReturnLine),
		heldBills:   make(map[string]models.HeldBill),
		operators:   make(map[int64]models.Operator),
		nextIDs:     make(map[string]int64),
	}
}

type fallbackSnapshot struct {
	items       map[int64]models.InventoryItem
	parties     map[int64]models.PartyAccount
	ledger      []models.PartyLedgerEntry
	sales       map[int64]models.Sale
	saleLines   map[int64][]models.SaleLine
	returns     map[int64]models.SalesReturn
	returnLines map[int64][]models.SalesReturnLine
	heldBills   map[string]models.HeldBill
	auditLogs   []models.AuditLog
	operators   map[int64]models.Operator
	nextIDs     map[string]int64
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copySliceMap[K comparable, V any](src map[K][]V) map[K][]V {
	dst := make(map[K][]V, len(src))
	for k, v := range src {
		dst[k] = append([]V(nil), v...)
	}
	return dst
}

func (s *FallbackStore) snapshot() fallbackSnapshot {
	return fallbackSnapshot{
		items:       copyMap(s.items),
		parties:     copyMap(s.parties),
		ledger:      append([]models.PartyLedgerEntry(nil), s.ledger...),
		sales:       copyMap(s.sales),
		saleLines:   copySliceMap(s.saleLines),
		returns:     copyMap(s.returns),
		returnLines: copySliceMap(s.returnLines),
		heldBills:   copyMap(s.heldBills),
		auditLogs:   append([]models.AuditLog(nil), s.auditLogs...),
		operators:   copyMap(s.operators),
		nextIDs:     copyMap(s.nextIDs),
	}
}

func (s *FallbackStore) restore(snap fallbackSnapshot) {
	s.items = snap.items
	s.parties = snap.parties
	s.ledger = snap.ledger
	s.sales = snap.sales
	s.saleLines = snap.saleLines
	s.returns = snap.returns
	s.returnLines = snap.returnLines
	s.heldBills = snap.heldBills
	s.auditLogs = snap.auditLogs
	s.operators = snap.operators
	s.nextIDs = snap.nextIDs
}

// InTx runs fn as an in-process software transaction: state is snapshotted
// up front and restored wholesale if fn returns an error.
func (s *FallbackStore) InTx(fn func(executor SQLExecutor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *FallbackStore) nextID(kind string) int64 {
	s.nextIDs[kind]++
	return s.nextIDs[kind]
}

func paginate(total, page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = total
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

func matchesSearch(term string, fields ...string) bool {
	needle := strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// --- InventoryRepository ---

func (s *FallbackStore) CreateItem(_ SQLExecutor, item *models.InventoryItem) (int64, error) {
	item.ID = s.nextID("inventory_items")
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.items[item.ID] = *item
	return item.ID, nil
}

func (s *FallbackStore) GetItemByID(id int64) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *FallbackStore) GetItems(filters models.InventoryFilters) ([]models.InventoryItem, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.InventoryItem{}
	for _, item := range s.items {
		if filters.Search != nil && *filters.Search != "" {
			generic := ""
			if item.GenericName != nil {
				generic = *item.GenericName
			}
			if !matchesSearch(*filters.Search, item.Name, generic) {
				continue
			}
		}
		if filters.LowStock && item.CurrentStock > item.MinStock {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	start, end := paginate(total, filters.Page, filters.PageSize)
	return matched[start:end], total, nil
}

func (s *FallbackStore) UpdateItem(_ SQLExecutor, item *models.InventoryItem) error {
	existing, ok := s.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	item.CurrentStock = existing.CurrentStock // stock changes only via AdjustStock
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	s.items[item.ID] = *item
	return nil
}

func (s *FallbackStore) AdjustStock(_ SQLExecutor, itemID int64, delta int) (int, error) {
	item, ok := s.items[itemID]
	if !ok {
		return 0, ErrNotFound
	}
	if item.CurrentStock+delta < 0 {
		return 0, fmt.Errorf("%w: item ID %d, delta %d", ErrStockConflict, itemID, delta)
	}
	item.CurrentStock += delta
	item.UpdatedAt = time.Now()
	s.items[itemID] = item
	return item.CurrentStock, nil
}

// --- PartyRepository ---

func (s *FallbackStore) CreateParty(_ SQLExecutor, party *models.PartyAccount) (int64, error) {
	party.ID = s.nextID("party_accounts")
	now := time.Now()
	party.CreatedAt = now
	party.UpdatedAt = now
	s.parties[party.ID] = *party
	return party.ID, nil
}

func (s *FallbackStore) GetPartyByID(id int64) (*models.PartyAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	party, ok := s.parties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &party, nil
}

func (s *FallbackStore) GetParties(filters models.PartyFilters) ([]models.PartyAccount, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.PartyAccount{}
	for _, party := range s.parties {
		if filters.PartyType != nil && *filters.PartyType != "" && party.PartyType != *filters.PartyType {
			continue
		}
		if filters.Search != nil && *filters.Search != "" {
			phone := ""
			if party.Phone != nil {
				phone = *party.Phone
			}
			if !matchesSearch(*filters.Search, party.FullName, phone) {
				continue
			}
		}
		matched = append(matched, party)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].FullName < matched[j].FullName })

	total := len(matched)
	start, end := paginate(total, filters.Page, filters.PageSize)
	return matched[start:end], total, nil
}

func (s *FallbackStore) UpdateParty(_ SQLExecutor, party *models.PartyAccount) error {
	existing, ok := s.parties[party.ID]
	if !ok {
		return ErrNotFound
	}
	party.Balance = existing.Balance // balance changes only via AdjustBalance
	party.PartyType = existing.PartyType
	party.CreatedAt = existing.CreatedAt
	party.UpdatedAt = time.Now()
	s.parties[party.ID] = *party
	return nil
}

func (s *FallbackStore) AdjustBalance(_ SQLExecutor, partyID int64, delta int64) (int64, error) {
	party, ok := s.parties[partyID]
	if !ok {
		return 0, ErrNotFound
	}
	party.Balance += delta
	party.UpdatedAt = time.Now()
	s.parties[partyID] = party
	return party.Balance, nil
}

func (s *FallbackStore) CreateLedgerEntry(_ SQLExecutor, entry *models.PartyLedgerEntry) (int64, error) {
	entry.ID = s.nextID("party_ledger_entries")
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.ledger = append(s.ledger, *entry)
	return entry.ID, nil
}

func (s *FallbackStore) GetLedgerEntries(partyID int64, page, pageSize int) ([]models.PartyLedgerEntry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.PartyLedgerEntry{}
	for _, entry := range s.ledger {
		if entry.PartyID == partyID {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	start, end := paginate(total, page, pageSize)
	return matched[start:end], total, nil
}
