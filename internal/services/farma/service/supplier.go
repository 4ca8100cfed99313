package service

import (
	"context"
	"errors"
	"strings"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database"
	"kasir-system/internal/database/models"

	"gorm.io/gorm"
)

type SupplierInput struct {
	NamaSuppliers string
	Telepon       string
	Alamat        string
}

func (s *Service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list suppliers", err)
	}
	return suppliers, nil
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	supplier, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Supplier tidak ditemukan")
		}
		return nil, apperr.Internal("failed to get supplier", err)
	}
	return supplier, nil
}

func (s *Service) CreateSupplier(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	supplier := &models.Supplier{
		NamaSuppliers: strings.TrimSpace(in.NamaSuppliers),
		Telepon:       strings.TrimSpace(in.Telepon),
		Alamat:        in.Alamat,
	}
	if err := s.store.CreateSupplier(ctx, supplier); err != nil {
		return nil, apperr.Internal("failed to create supplier", err)
	}
	return supplier, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (*models.Supplier, error) {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.NamaSuppliers = strings.TrimSpace(in.NamaSuppliers)
	supplier.Telepon = strings.TrimSpace(in.Telepon)
	supplier.Alamat = in.Alamat

	if err := s.store.UpdateSupplier(ctx, supplier); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Supplier tidak ditemukan")
		}
		return nil, apperr.Internal("failed to update supplier", err)
	}
	return supplier, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	if err := s.store.DeleteSupplier(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperr.NotFound("Supplier tidak ditemukan")
		case errors.Is(err, database.ErrReferenced):
			return apperr.Rule("Supplier masih memiliki riwayat penerimaan dan tidak dapat dihapus")
		}
		return apperr.Internal("failed to delete supplier", err)
	}
	return nil
}
