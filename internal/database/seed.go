package database

import (
	"context"
	"fmt"
	"time"

	"kasir-system/internal/database/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	name, email, password string
	role                  models.Role
}

var cafeSeedUsers = []seedUser{
	{"Superadmin", "super@cafe.com", "super123", models.RoleSuperadmin},
	{"Admin User", "admin@cafe.com", "admin123", models.RoleAdmin},
	{"Chef User", "chef@cafe.com", "chef123", models.RoleChef},
	{"Kasir User", "kasir@cafe.com", "kasir123", models.RoleKasir},
	{"Owner User", "owner@cafe.com", "owner123", models.RoleOwner},
}

var farmaSeedUsers = []seedUser{
	{"Superadmin Apotek", "super@apotek.com", "super123", models.RoleSuperadmin},
	{"Apoteker Utama", "apoteker@apotek.com", "apoteker123", models.RoleApoteker},
	{"Kasir Apotek", "kasir@apotek.com", "kasir123", models.RoleKasir},
}

// SeedCafe inserts the default cafe accounts when the users table is empty.
func SeedCafe(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := seedUsers(tx, cafeSeedUsers)
		return err
	})
}

// SeedFarma inserts the default apotek accounts, suppliers and catalog when
// the users table is empty.
func SeedFarma(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seeded, err := seedUsers(tx, farmaSeedUsers)
		if err != nil || !seeded {
			return err
		}

		suppliers := []models.Supplier{
			{NamaSuppliers: "PT. Kimia Farma Trading", Telepon: "021-12345678", Alamat: "Jl. Budi Utomo No. 1, Jakarta"},
			{NamaSuppliers: "PT. Enseval Putera Megatrading", Telepon: "021-87654321", Alamat: "Kawasan Industri Pulogadung, Jakarta"},
		}
		if err := tx.Create(&suppliers).Error; err != nil {
			return fmt.Errorf("seed suppliers: %w", err)
		}

		obat := []models.Obat{
			seedObat("OBT-001", "Paracetamol 500mg", "Obat Bebas", "Strip", 50, 10, 4500, 6000, "2027-12-31"),
			seedObat("OBT-002", "Amoxicillin 500mg", "Obat Keras", "Strip", 20, 5, 8000, 12000, "2026-06-15"),
			seedObat("ALK-001", "Masker Medis 3-Ply", "Alat Kesehatan", "Box", 100, 20, 25000, 35000, "2029-01-01"),
		}
		if err := tx.Create(&obat).Error; err != nil {
			return fmt.Errorf("seed obat: %w", err)
		}
		return nil
	})
}

func seedUsers(tx *gorm.DB, users []seedUser) (bool, error) {
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	rows := make([]models.User, 0, len(users))
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
		rows = append(rows, models.User{
			Name:     u.name,
			Email:    u.email,
			Password: string(hash),
			Role:     u.role,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return false, fmt.Errorf("seed users: %w", err)
	}
	return true, nil
}

func seedObat(kode, nama, kategori, satuan string, stok, minimal int32, beli, jual int64, exp string) models.Obat {
	tgl, _ := time.Parse("2006-01-02", exp)
	return models.Obat{
		KodeObat:      kode,
		NamaObat:      nama,
		Kategori:      kategori,
		Satuan:        satuan,
		Stok:          stok,
		StokMinimal:   minimal,
		HargaBeli:     decimal.NewFromInt(beli),
		HargaJual:     decimal.NewFromInt(jual),
		TglKadaluarsa: tgl,
	}
}
