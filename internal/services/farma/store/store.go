// Package store persists the pharmacy catalog, suppliers, sales and stock
// receipts.
package store

import (
	"context"
	"errors"
	"time"

	"kasir-system/internal/database/models"

	"github.com/shopspring/decimal"
)

// ErrInsufficientStock is returned by DecrementStock when the guarded update
// matched no row.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidQuantity is returned by stock moves given a non-positive
// quantity, or one that would push stok past the column range.
var ErrInvalidQuantity = errors.New("invalid stock quantity")

type ObatFilter struct {
	Search   string
	Kategori string
}

type PageFilter struct {
	Offset int
	Limit  int
}

type TopObat struct {
	ObatID   int64  `json:"obat_id"`
	NamaObat string `json:"nama_obat"`
	TotalQty int64  `json:"total_qty"`
}

// Store is the farma unit of work. Unknown ids return gorm.ErrRecordNotFound,
// unique violations gorm.ErrDuplicatedKey and blocked deletes
// database.ErrReferenced. Time ranges are half open: [from, to).
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	ListObat(ctx context.Context, filter ObatFilter) ([]models.Obat, error)
	GetObat(ctx context.Context, id int64) (*models.Obat, error)
	// LockObat returns the rows that exist among ids, locked FOR UPDATE in
	// ascending id order.
	LockObat(ctx context.Context, ids []int64) ([]models.Obat, error)
	CreateObat(ctx context.Context, obat *models.Obat) error
	// UpdateObat writes the named catalog columns of obat plus updated_at.
	// stok is never written.
	UpdateObat(ctx context.Context, obat *models.Obat, columns []string) error
	DeleteObat(ctx context.Context, id int64) error
	DecrementStock(ctx context.Context, id int64, qty int32) error
	// ApplyReceipt adds qty to stok and sets both prices.
	ApplyReceipt(ctx context.Context, id int64, qty int32, hargaBeli, hargaJual decimal.Decimal) error

	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
	UpdateSupplier(ctx context.Context, supplier *models.Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error

	ListPenjualan(ctx context.Context, page PageFilter) ([]models.Penjualan, int64, error)
	GetPenjualan(ctx context.Context, id int64) (*models.Penjualan, error)
	CreatePenjualan(ctx context.Context, sale *models.Penjualan) error

	ListPenerimaan(ctx context.Context, page PageFilter) ([]models.Penerimaan, int64, error)
	GetPenerimaan(ctx context.Context, id int64) (*models.Penerimaan, error)
	InvoiceExists(ctx context.Context, noFaktur string) (bool, error)
	CreatePenerimaan(ctx context.Context, receipt *models.Penerimaan) error

	SalesTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	CountObat(ctx context.Context) (int64, error)
	// LowStock lists items at or under their own minimum or under fallback.
	LowStock(ctx context.Context, fallback int32) ([]models.Obat, error)
	// Expiring lists items whose expiry date falls within [from, to].
	Expiring(ctx context.Context, from, to time.Time) ([]models.Obat, error)
	TopObat(ctx context.Context, from, to time.Time, limit int) ([]TopObat, error)
	RecentPenjualan(ctx context.Context, limit int) ([]models.Penjualan, error)
	PenjualanBetween(ctx context.Context, from, to time.Time) ([]models.Penjualan, error)
	PenerimaanBetween(ctx context.Context, from, to time.Time) ([]models.Penerimaan, error)
}
