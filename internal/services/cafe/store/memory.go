package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kasir-system/internal/database"
	"kasir-system/internal/database/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MemoryStore is an in-process Store. Transactions are serialized and roll
// back to a snapshot when fn returns an error.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	seq    int64
	menus  map[int64]models.Menu
	orders map[int64]models.Order
	cafes  map[int64]models.Cafe
	users  map[int64]models.User
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		menus:  make(map[int64]models.Menu),
		orders: make(map[int64]models.Order),
		cafes:  make(map[int64]models.Cafe),
		users:  make(map[int64]models.User),
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source used for new rows.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}

// AddUser registers a user so order reads can expand it.
func (s *MemoryStore) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryStore) Transaction(_ context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type memSnapshot struct {
	seq    int64
	menus  map[int64]models.Menu
	orders map[int64]models.Order
	cafes  map[int64]models.Cafe
}

func (s *MemoryStore) snapshot() memSnapshot {
	snap := memSnapshot{
		seq:    s.seq,
		menus:  make(map[int64]models.Menu, len(s.menus)),
		orders: make(map[int64]models.Order, len(s.orders)),
		cafes:  make(map[int64]models.Cafe, len(s.cafes)),
	}
	for k, v := range s.menus {
		snap.menus[k] = v
	}
	for k, v := range s.orders {
		v.Details = append([]models.OrderDetail(nil), v.Details...)
		snap.orders[k] = v
	}
	for k, v := range s.cafes {
		snap.cafes[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.seq = snap.seq
	s.menus = snap.menus
	s.orders = snap.orders
	s.cafes = snap.cafes
}

func (s *MemoryStore) nextID() int64 {
	s.seq++
	return s.seq
}

// --- Menus ---

func (s *MemoryStore) ListMenus(_ context.Context, filter MenuFilter) ([]models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Menu{}
	for _, m := range s.menus {
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetMenu(_ context.Context, id int64) (*models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.menus[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (s *MemoryStore) FindMenus(_ context.Context, ids []int64) ([]models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Menu{}
	for _, id := range ids {
		if m, ok := s.menus[id]; ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateMenu(_ context.Context, menu *models.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	menu.ID = s.nextID()
	menu.CreatedAt, menu.UpdatedAt = s.now(), s.now()
	s.menus[menu.ID] = *menu
	return nil
}

func (s *MemoryStore) UpdateMenu(_ context.Context, menu *models.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menus[menu.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	menu.UpdatedAt = s.now()
	s.menus[menu.ID] = *menu
	return nil
}

func (s *MemoryStore) DeleteMenu(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menus[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, o := range s.orders {
		for _, d := range o.Details {
			if d.MenuID == id {
				return database.ErrReferenced
			}
		}
	}
	delete(s.menus, id)
	return nil
}

// --- Orders ---

func (s *MemoryStore) expand(o models.Order) models.Order {
	details := make([]models.OrderDetail, len(o.Details))
	for i, d := range o.Details {
		if m, ok := s.menus[d.MenuID]; ok {
			m := m
			d.Menu = &m
		}
		details[i] = d
	}
	o.Details = details
	if u, ok := s.users[o.UserID]; ok {
		o.User = &u
	}
	return o
}

func (s *MemoryStore) ListOrders(_ context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.Order
	for _, o := range s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != 0 && o.UserID != filter.UserID {
			continue
		}
		all = append(all, s.expand(o))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if filter.Offset >= len(all) {
		return []models.Order{}, total, nil
	}
	end := len(all)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return all[filter.Offset:end], total, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := s.expand(o)
	return &out, nil
}

func (s *MemoryStore) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.GetOrder(ctx, id)
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	order.ID = s.nextID()
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.Details {
		order.Details[i].ID = s.nextID()
		order.Details[i].OrderID = order.ID
		order.Details[i].CreatedAt = now
		order.Details[i].Menu = nil
	}
	stored := *order
	stored.User = nil
	stored.Details = append([]models.OrderDetail(nil), order.Details...)
	s.orders[order.ID] = stored
	return nil
}

func (s *MemoryStore) SetOrderStatus(_ context.Context, id int64, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return nil
}

// --- Cafes ---

func (s *MemoryStore) ListCafes(_ context.Context) ([]models.Cafe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Cafe{}
	for _, c := range s.cafes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateCafe(_ context.Context, cafe *models.Cafe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cafe.ID = s.nextID()
	cafe.CreatedAt, cafe.UpdatedAt = s.now(), s.now()
	s.cafes[cafe.ID] = *cafe
	return nil
}

func (s *MemoryStore) CafeExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cafes[id]
	return ok, nil
}

// --- Reports ---

func (s *MemoryStore) CompletedRevenue(_ context.Context, since time.Time) (decimal.Decimal, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	var count int64
	for _, o := range s.orders {
		if o.Status != models.OrderCompleted {
			continue
		}
		if !since.IsZero() && o.CreatedAt.Before(since) {
			continue
		}
		total = total.Add(o.TotalPrice)
		count++
	}
	return total, count, nil
}

func (s *MemoryStore) TopMenus(_ context.Context, limit int) ([]TopMenu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := make(map[int64]*TopMenu)
	for _, o := range s.orders {
		if o.Status != models.OrderCompleted {
			continue
		}
		for _, d := range o.Details {
			row, ok := agg[d.MenuID]
			if !ok {
				row = &TopMenu{MenuID: d.MenuID, Name: s.menus[d.MenuID].Name}
				agg[d.MenuID] = row
			}
			row.TotalQty += int64(d.Quantity)
			row.Revenue = row.Revenue.Add(d.Subtotal)
		}
	}

	out := make([]TopMenu, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalQty == out[j].TotalQty {
			return out[i].MenuID < out[j].MenuID
		}
		return out[i].TotalQty > out[j].TotalQty
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
