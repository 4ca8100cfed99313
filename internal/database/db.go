package database

import (
	"errors"
	"fmt"

	"kasir-system/config"
	"kasir-system/internal/database/models"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewConnection(cfg config.DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: NewGormLogger(logger, cfg.SlowQuery),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

func MigrateCafeDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Cafe{},
		&models.User{},
		&models.Menu{},
		&models.Order{},
		&models.OrderDetail{},
	)
}

func MigrateFarmaDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Supplier{},
		&models.Obat{},
		&models.Penjualan{},
		&models.PenjualanDetail{},
		&models.Penerimaan{},
		&models.PenerimaanDetail{},
	)
}

// ErrReferenced is returned by stores when a delete is blocked by rows that
// still reference the record.
var ErrReferenced = errors.New("record is still referenced")

// IsUniqueViolation reports whether err is a postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a postgres foreign_key_violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
