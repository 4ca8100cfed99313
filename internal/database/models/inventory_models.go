package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Obat struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	KodeObat      string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"kode_obat"`
	NamaObat      string          `gorm:"type:varchar(255);not null" json:"nama_obat"`
	Kategori      string          `gorm:"type:varchar(64);not null" json:"kategori"`
	Satuan        string          `gorm:"type:varchar(32)" json:"satuan"`
	Stok          int32           `gorm:"not null;default:0;check:stok >= 0" json:"stok"`
	StokMinimal   int32           `gorm:"not null;default:0" json:"stok_minimal"`
	HargaBeli     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"harga_beli"`
	HargaJual     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"harga_jual"`
	TglKadaluarsa time.Time       `gorm:"type:date;not null;index" json:"tgl_kadaluarsa"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Obat) TableName() string { return "obat" }

type Supplier struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	NamaSuppliers string    `gorm:"type:varchar(255);not null" json:"nama_suppliers"`
	Telepon       string    `gorm:"type:varchar(32)" json:"telepon"`
	Alamat        string    `gorm:"type:text" json:"alamat"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Supplier) TableName() string { return "suppliers" }

type Penjualan struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"index;not null" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	NoTransaksi string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"no_transaksi"`
	TotalHarga  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_harga"`
	Bayar       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"bayar"`
	Kembali     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"kembali"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Details []PenjualanDetail `gorm:"foreignKey:PenjualanID;constraint:OnDelete:CASCADE" json:"details"`
}

func (Penjualan) TableName() string { return "penjualan" }

type PenjualanDetail struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PenjualanID int64           `gorm:"index;not null" json:"penjualan_id"`
	ObatID      int64           `gorm:"index;not null" json:"obat_id"`
	Obat        *Obat           `gorm:"foreignKey:ObatID" json:"obat,omitempty"`
	Qty         int32           `gorm:"not null" json:"qty"`
	Harga       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"harga"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (PenjualanDetail) TableName() string { return "penjualan_details" }

type Penerimaan struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SupplierID    int64           `gorm:"index;not null" json:"supplier_id"`
	Supplier      *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	UserID        int64           `gorm:"index;not null" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	NoFaktur      string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"no_faktur"`
	TglPenerimaan time.Time       `gorm:"not null;index" json:"tgl_penerimaan"`
	TotalHarga    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_harga"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Details []PenerimaanDetail `gorm:"foreignKey:PenerimaanID;constraint:OnDelete:CASCADE" json:"details"`
}

func (Penerimaan) TableName() string { return "penerimaan" }

type PenerimaanDetail struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PenerimaanID int64           `gorm:"index;not null" json:"penerimaan_id"`
	ObatID       int64           `gorm:"index;not null" json:"obat_id"`
	Obat         *Obat           `gorm:"foreignKey:ObatID" json:"obat,omitempty"`
	Jumlah       int32           `gorm:"not null" json:"jumlah"`
	HargaSatuan  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"harga_satuan"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (PenerimaanDetail) TableName() string { return "penerimaan_details" }
