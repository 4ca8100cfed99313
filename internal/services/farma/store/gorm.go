package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kasir-system/internal/database"
	"kasir-system/internal/database/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	case database.IsForeignKeyViolation(err):
		return database.ErrReferenced
	}
	return err
}

func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, id int64) error {
	res := db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --- Obat ---

func (s *GormStore) ListObat(ctx context.Context, filter ObatFilter) ([]models.Obat, error) {
	query := s.db.WithContext(ctx).Model(&models.Obat{})
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := "%" + q + "%"
		query = query.Where("nama_obat ILIKE ? OR kode_obat ILIKE ?", like, like)
	}
	if filter.Kategori != "" {
		query = query.Where("kategori = ?", filter.Kategori)
	}

	var items []models.Obat
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list obat: %w", err)
	}
	return items, nil
}

func (s *GormStore) GetObat(ctx context.Context, id int64) (*models.Obat, error) {
	var obat models.Obat
	if err := s.db.WithContext(ctx).First(&obat, id).Error; err != nil {
		return nil, err
	}
	return &obat, nil
}

func (s *GormStore) LockObat(ctx context.Context, ids []int64) ([]models.Obat, error) {
	var items []models.Obat
	if len(ids) == 0 {
		return items, nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("lock obat: %w", err)
	}
	return items, nil
}

func (s *GormStore) CreateObat(ctx context.Context, obat *models.Obat) error {
	if err := s.db.WithContext(ctx).Create(obat).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) UpdateObat(ctx context.Context, obat *models.Obat, columns []string) error {
	cols := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		if c != "stok" {
			cols = append(cols, c)
		}
	}
	obat.UpdatedAt = time.Now()
	res := s.db.WithContext(ctx).Model(obat).
		Select(append(cols, "updated_at")).
		Updates(obat)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) DeleteObat(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, &models.Obat{}, id)
}

func (s *GormStore) DecrementStock(ctx context.Context, id int64, qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	res := s.db.WithContext(ctx).Model(&models.Obat{}).
		Where("id = ? AND stok >= ?", id, qty).
		Updates(map[string]interface{}{
			"stok":       gorm.Expr("stok - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("decrement stok: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (s *GormStore) ApplyReceipt(ctx context.Context, id int64, qty int32, hargaBeli, hargaJual decimal.Decimal) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	res := s.db.WithContext(ctx).Model(&models.Obat{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stok":       gorm.Expr("stok + ?", qty),
			"harga_beli": hargaBeli,
			"harga_jual": hargaJual,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("apply receipt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --- Suppliers ---

func (s *GormStore) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *GormStore) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *GormStore) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	return s.db.WithContext(ctx).Create(supplier).Error
}

func (s *GormStore) UpdateSupplier(ctx context.Context, supplier *models.Supplier) error {
	supplier.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Model(supplier).
		Select("nama_suppliers", "telepon", "alamat", "updated_at").
		Updates(supplier).Error
}

func (s *GormStore) DeleteSupplier(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, &models.Supplier{}, id)
}

// --- Penjualan ---

func (s *GormStore) ListPenjualan(ctx context.Context, page PageFilter) ([]models.Penjualan, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Penjualan{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count penjualan: %w", err)
	}

	var sales []models.Penjualan
	err := s.db.WithContext(ctx).
		Preload("Details.Obat").
		Preload("User").
		Order("created_at DESC, id DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&sales).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list penjualan: %w", err)
	}
	return sales, total, nil
}

func (s *GormStore) GetPenjualan(ctx context.Context, id int64) (*models.Penjualan, error) {
	var sale models.Penjualan
	err := s.db.WithContext(ctx).
		Preload("Details.Obat").
		Preload("User").
		First(&sale, id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *GormStore) CreatePenjualan(ctx context.Context, sale *models.Penjualan) error {
	for i := range sale.Details {
		sale.Details[i].Obat = nil
	}
	sale.User = nil
	if err := s.db.WithContext(ctx).Create(sale).Error; err != nil {
		return translate(err)
	}
	return nil
}

// --- Penerimaan ---

func (s *GormStore) ListPenerimaan(ctx context.Context, page PageFilter) ([]models.Penerimaan, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Penerimaan{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count penerimaan: %w", err)
	}

	var receipts []models.Penerimaan
	err := s.db.WithContext(ctx).
		Preload("Details.Obat").
		Preload("Supplier").
		Preload("User").
		Order("created_at DESC, id DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&receipts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list penerimaan: %w", err)
	}
	return receipts, total, nil
}

func (s *GormStore) GetPenerimaan(ctx context.Context, id int64) (*models.Penerimaan, error) {
	var receipt models.Penerimaan
	err := s.db.WithContext(ctx).
		Preload("Details.Obat").
		Preload("Supplier").
		Preload("User").
		First(&receipt, id).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (s *GormStore) InvoiceExists(ctx context.Context, noFaktur string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Penerimaan{}).
		Where("no_faktur = ?", noFaktur).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check no_faktur: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) CreatePenerimaan(ctx context.Context, receipt *models.Penerimaan) error {
	for i := range receipt.Details {
		receipt.Details[i].Obat = nil
	}
	receipt.Supplier = nil
	receipt.User = nil
	if err := s.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return translate(err)
	}
	return nil
}

// --- Reports ---

func (s *GormStore) SalesTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.Penjualan{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Select("COALESCE(SUM(total_harga), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum penjualan: %w", err)
	}
	return total, nil
}

func (s *GormStore) CountObat(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Obat{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count obat: %w", err)
	}
	return count, nil
}

func (s *GormStore) LowStock(ctx context.Context, fallback int32) ([]models.Obat, error) {
	var items []models.Obat
	err := s.db.WithContext(ctx).
		Where("stok <= stok_minimal OR stok <= ?", fallback).
		Order("stok ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return items, nil
}

func (s *GormStore) Expiring(ctx context.Context, from, to time.Time) ([]models.Obat, error) {
	var items []models.Obat
	err := s.db.WithContext(ctx).
		Where("tgl_kadaluarsa >= ? AND tgl_kadaluarsa <= ?", from, to).
		Order("tgl_kadaluarsa ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("expiring obat: %w", err)
	}
	return items, nil
}

func (s *GormStore) TopObat(ctx context.Context, from, to time.Time, limit int) ([]TopObat, error) {
	var rows []TopObat
	err := s.db.WithContext(ctx).
		Table("penjualan_details AS d").
		Select("d.obat_id, o.nama_obat, SUM(d.qty) AS total_qty").
		Joins("JOIN penjualan p ON p.id = d.penjualan_id").
		Joins("JOIN obat o ON o.id = d.obat_id").
		Where("p.created_at >= ? AND p.created_at < ?", from, to).
		Group("d.obat_id, o.nama_obat").
		Order("total_qty DESC, d.obat_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top obat: %w", err)
	}
	return rows, nil
}

func (s *GormStore) RecentPenjualan(ctx context.Context, limit int) ([]models.Penjualan, error) {
	var sales []models.Penjualan
	err := s.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Details.Obat").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("recent penjualan: %w", err)
	}
	return sales, nil
}

func (s *GormStore) PenjualanBetween(ctx context.Context, from, to time.Time) ([]models.Penjualan, error) {
	var sales []models.Penjualan
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("penjualan between: %w", err)
	}
	return sales, nil
}

func (s *GormStore) PenerimaanBetween(ctx context.Context, from, to time.Time) ([]models.Penerimaan, error) {
	var receipts []models.Penerimaan
	err := s.db.WithContext(ctx).
		Preload("Supplier").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, fmt.Errorf("penerimaan between: %w", err)
	}
	return receipts, nil
}
