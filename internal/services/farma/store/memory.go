package store

import (
	"context"
	"math"
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

	data  memData
	users map[int64]models.User
	now   func() time.Time
}

type memData struct {
	seq        int64
	obat       map[int64]models.Obat
	suppliers  map[int64]models.Supplier
	penjualan  map[int64]models.Penjualan
	penerimaan map[int64]models.Penerimaan
}

func (d memData) clone() memData {
	out := memData{
		seq:        d.seq,
		obat:       make(map[int64]models.Obat, len(d.obat)),
		suppliers:  make(map[int64]models.Supplier, len(d.suppliers)),
		penjualan:  make(map[int64]models.Penjualan, len(d.penjualan)),
		penerimaan: make(map[int64]models.Penerimaan, len(d.penerimaan)),
	}
	for k, v := range d.obat {
		out.obat[k] = v
	}
	for k, v := range d.suppliers {
		out.suppliers[k] = v
	}
	for k, v := range d.penjualan {
		v.Details = append([]models.PenjualanDetail(nil), v.Details...)
		out.penjualan[k] = v
	}
	for k, v := range d.penerimaan {
		v.Details = append([]models.PenerimaanDetail(nil), v.Details...)
		out.penerimaan[k] = v
	}
	return out
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: memData{
			obat:       make(map[int64]models.Obat),
			suppliers:  make(map[int64]models.Supplier),
			penjualan:  make(map[int64]models.Penjualan),
			penerimaan: make(map[int64]models.Penerimaan),
		},
		users: make(map[int64]models.User),
		now:   time.Now,
	}
}

// SetClock overrides the timestamp source used for new rows.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MemoryStore) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryStore) Transaction(_ context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) nextID() int64 {
	s.data.seq++
	return s.data.seq
}

// --- Obat ---

func sortObatNewestFirst(items []models.Obat) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func (s *MemoryStore) ListObat(_ context.Context, filter ObatFilter) ([]models.Obat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Search))
	out := []models.Obat{}
	for _, o := range s.data.obat {
		if q != "" && !strings.Contains(strings.ToLower(o.NamaObat), q) && !strings.Contains(strings.ToLower(o.KodeObat), q) {
			continue
		}
		if filter.Kategori != "" && o.Kategori != filter.Kategori {
			continue
		}
		out = append(out, o)
	}
	sortObatNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) GetObat(_ context.Context, id int64) (*models.Obat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.data.obat[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (s *MemoryStore) LockObat(_ context.Context, ids []int64) ([]models.Obat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Obat{}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if o, ok := s.data.obat[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) kodeTaken(kode string, except int64) bool {
	for _, o := range s.data.obat {
		if o.ID != except && strings.EqualFold(o.KodeObat, kode) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateObat(_ context.Context, obat *models.Obat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kodeTaken(obat.KodeObat, 0) {
		return gorm.ErrDuplicatedKey
	}
	now := s.now()
	obat.ID = s.nextID()
	obat.CreatedAt, obat.UpdatedAt = now, now
	s.data.obat[obat.ID] = *obat
	return nil
}

func (s *MemoryStore) UpdateObat(_ context.Context, obat *models.Obat, columns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok := s.data.obat[obat.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, c := range columns {
		switch c {
		case "kode_obat":
			if s.kodeTaken(obat.KodeObat, obat.ID) {
				return gorm.ErrDuplicatedKey
			}
			updated.KodeObat = obat.KodeObat
		case "nama_obat":
			updated.NamaObat = obat.NamaObat
		case "kategori":
			updated.Kategori = obat.Kategori
		case "satuan":
			updated.Satuan = obat.Satuan
		case "stok_minimal":
			updated.StokMinimal = obat.StokMinimal
		case "harga_beli":
			updated.HargaBeli = obat.HargaBeli
		case "harga_jual":
			updated.HargaJual = obat.HargaJual
		case "tgl_kadaluarsa":
			updated.TglKadaluarsa = obat.TglKadaluarsa
		}
	}
	updated.UpdatedAt = s.now()
	s.data.obat[obat.ID] = updated
	*obat = updated
	return nil
}

func (s *MemoryStore) DeleteObat(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.obat[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, p := range s.data.penjualan {
		for _, d := range p.Details {
			if d.ObatID == id {
				return database.ErrReferenced
			}
		}
	}
	for _, p := range s.data.penerimaan {
		for _, d := range p.Details {
			if d.ObatID == id {
				return database.ErrReferenced
			}
		}
	}
	delete(s.data.obat, id)
	return nil
}

func (s *MemoryStore) DecrementStock(_ context.Context, id int64, qty int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	o, ok := s.data.obat[id]
	if !ok || o.Stok < qty {
		return ErrInsufficientStock
	}
	o.Stok -= qty
	o.UpdatedAt = s.now()
	s.data.obat[id] = o
	return nil
}

func (s *MemoryStore) ApplyReceipt(_ context.Context, id int64, qty int32, hargaBeli, hargaJual decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	o, ok := s.data.obat[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if int64(o.Stok)+int64(qty) > math.MaxInt32 {
		return ErrInvalidQuantity
	}
	o.Stok += qty
	o.HargaBeli = hargaBeli
	o.HargaJual = hargaJual
	o.UpdatedAt = s.now()
	s.data.obat[id] = o
	return nil
}

// --- Suppliers ---

func (s *MemoryStore) ListSuppliers(_ context.Context) ([]models.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Supplier{}
	for _, sup := range s.data.suppliers {
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetSupplier(_ context.Context, id int64) (*models.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.data.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sup, nil
}

func (s *MemoryStore) CreateSupplier(_ context.Context, supplier *models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	supplier.ID = s.nextID()
	supplier.CreatedAt, supplier.UpdatedAt = now, now
	s.data.suppliers[supplier.ID] = *supplier
	return nil
}

func (s *MemoryStore) UpdateSupplier(_ context.Context, supplier *models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data.suppliers[supplier.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	supplier.CreatedAt = current.CreatedAt
	supplier.UpdatedAt = s.now()
	s.data.suppliers[supplier.ID] = *supplier
	return nil
}

func (s *MemoryStore) DeleteSupplier(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.suppliers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, p := range s.data.penerimaan {
		if p.SupplierID == id {
			return database.ErrReferenced
		}
	}
	delete(s.data.suppliers, id)
	return nil
}

// --- Penjualan ---

func (s *MemoryStore) expandSale(p models.Penjualan) models.Penjualan {
	details := make([]models.PenjualanDetail, len(p.Details))
	for i, d := range p.Details {
		if o, ok := s.data.obat[d.ObatID]; ok {
			o := o
			d.Obat = &o
		}
		details[i] = d
	}
	p.Details = details
	if u, ok := s.users[p.UserID]; ok {
		p.User = &u
	}
	return p
}

func newestSalesFirst(sales []models.Penjualan) {
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].CreatedAt.Equal(sales[j].CreatedAt) {
			return sales[i].ID > sales[j].ID
		}
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
}

func paginate(n int, page PageFilter) (int, int) {
	if page.Offset >= n {
		return n, n
	}
	end := n
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return page.Offset, end
}

func (s *MemoryStore) ListPenjualan(_ context.Context, page PageFilter) ([]models.Penjualan, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.Penjualan, 0, len(s.data.penjualan))
	for _, p := range s.data.penjualan {
		all = append(all, s.expandSale(p))
	}
	newestSalesFirst(all)
	start, end := paginate(len(all), page)
	return all[start:end], int64(len(all)), nil
}

func (s *MemoryStore) GetPenjualan(_ context.Context, id int64) (*models.Penjualan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.penjualan[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := s.expandSale(p)
	return &out, nil
}

func (s *MemoryStore) CreatePenjualan(_ context.Context, sale *models.Penjualan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data.penjualan {
		if p.NoTransaksi == sale.NoTransaksi {
			return gorm.ErrDuplicatedKey
		}
	}
	now := s.now()
	sale.ID = s.nextID()
	sale.CreatedAt, sale.UpdatedAt = now, now
	for i := range sale.Details {
		sale.Details[i].ID = s.nextID()
		sale.Details[i].PenjualanID = sale.ID
		sale.Details[i].CreatedAt = now
		sale.Details[i].Obat = nil
	}
	stored := *sale
	stored.User = nil
	stored.Details = append([]models.PenjualanDetail(nil), sale.Details...)
	s.data.penjualan[sale.ID] = stored
	return nil
}

// --- Penerimaan ---

func (s *MemoryStore) expandReceipt(p models.Penerimaan) models.Penerimaan {
	details := make([]models.PenerimaanDetail, len(p.Details))
	for i, d := range p.Details {
		if o, ok := s.data.obat[d.ObatID]; ok {
			o := o
			d.Obat = &o
		}
		details[i] = d
	}
	p.Details = details
	if sup, ok := s.data.suppliers[p.SupplierID]; ok {
		p.Supplier = &sup
	}
	if u, ok := s.users[p.UserID]; ok {
		p.User = &u
	}
	return p
}

func (s *MemoryStore) ListPenerimaan(_ context.Context, page PageFilter) ([]models.Penerimaan, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.Penerimaan, 0, len(s.data.penerimaan))
	for _, p := range s.data.penerimaan {
		all = append(all, s.expandReceipt(p))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	start, end := paginate(len(all), page)
	return all[start:end], int64(len(all)), nil
}

func (s *MemoryStore) GetPenerimaan(_ context.Context, id int64) (*models.Penerimaan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.penerimaan[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := s.expandReceipt(p)
	return &out, nil
}

func (s *MemoryStore) InvoiceExists(_ context.Context, noFaktur string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.data.penerimaan {
		if p.NoFaktur == noFaktur {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreatePenerimaan(_ context.Context, receipt *models.Penerimaan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data.penerimaan {
		if p.NoFaktur == receipt.NoFaktur {
			return gorm.ErrDuplicatedKey
		}
	}
	now := s.now()
	receipt.ID = s.nextID()
	receipt.CreatedAt, receipt.UpdatedAt = now, now
	for i := range receipt.Details {
		receipt.Details[i].ID = s.nextID()
		receipt.Details[i].PenerimaanID = receipt.ID
		receipt.Details[i].CreatedAt = now
		receipt.Details[i].Obat = nil
	}
	stored := *receipt
	stored.Supplier = nil
	stored.User = nil
	stored.Details = append([]models.PenerimaanDetail(nil), receipt.Details...)
	s.data.penerimaan[receipt.ID] = stored
	return nil
}

// --- Reports ---

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (s *MemoryStore) SalesTotal(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, p := range s.data.penjualan {
		if within(p.CreatedAt, from, to) {
			total = total.Add(p.TotalHarga)
		}
	}
	return total, nil
}

func (s *MemoryStore) CountObat(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data.obat)), nil
}

func (s *MemoryStore) LowStock(_ context.Context, fallback int32) ([]models.Obat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Obat{}
	for _, o := range s.data.obat {
		if o.Stok <= o.StokMinimal || o.Stok <= fallback {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stok == out[j].Stok {
			return out[i].ID < out[j].ID
		}
		return out[i].Stok < out[j].Stok
	})
	return out, nil
}

func (s *MemoryStore) Expiring(_ context.Context, from, to time.Time) ([]models.Obat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Obat{}
	for _, o := range s.data.obat {
		if !o.TglKadaluarsa.Before(from) && !o.TglKadaluarsa.After(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TglKadaluarsa.Equal(out[j].TglKadaluarsa) {
			return out[i].ID < out[j].ID
		}
		return out[i].TglKadaluarsa.Before(out[j].TglKadaluarsa)
	})
	return out, nil
}

func (s *MemoryStore) TopObat(_ context.Context, from, to time.Time, limit int) ([]TopObat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := make(map[int64]*TopObat)
	for _, p := range s.data.penjualan {
		if !within(p.CreatedAt, from, to) {
			continue
		}
		for _, d := range p.Details {
			row, ok := agg[d.ObatID]
			if !ok {
				row = &TopObat{ObatID: d.ObatID, NamaObat: s.data.obat[d.ObatID].NamaObat}
				agg[d.ObatID] = row
			}
			row.TotalQty += int64(d.Qty)
		}
	}

	out := make([]TopObat, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalQty == out[j].TotalQty {
			return out[i].ObatID < out[j].ObatID
		}
		return out[i].TotalQty > out[j].TotalQty
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) RecentPenjualan(_ context.Context, limit int) ([]models.Penjualan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.Penjualan, 0, len(s.data.penjualan))
	for _, p := range s.data.penjualan {
		all = append(all, s.expandSale(p))
	}
	newestSalesFirst(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) PenjualanBetween(_ context.Context, from, to time.Time) ([]models.Penjualan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Penjualan{}
	for _, p := range s.data.penjualan {
		if within(p.CreatedAt, from, to) {
			p.Details = nil
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) PenerimaanBetween(_ context.Context, from, to time.Time) ([]models.Penerimaan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Penerimaan{}
	for _, p := range s.data.penerimaan {
		if !within(p.CreatedAt, from, to) {
			continue
		}
		if sup, ok := s.data.suppliers[p.SupplierID]; ok {
			p.Supplier = &sup
		}
		p.Details = nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
