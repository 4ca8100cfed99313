package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database/models"
	"kasir-system/internal/metrics"
	"kasir-system/internal/redisstore"
	"kasir-system/internal/services/farma/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"gorm.io/gorm"
)

type SaleItemInput struct {
	ObatID int64
	Jumlah int32
}

type SaleInput struct {
	Bayar decimal.Decimal
	Items []SaleItemInput
}

func (s *Service) ListPenjualan(ctx context.Context, page store.PageFilter) ([]models.Penjualan, int64, error) {
	sales, total, err := s.store.ListPenjualan(ctx, page)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list penjualan", err)
	}
	return sales, total, nil
}

func (s *Service) GetPenjualan(ctx context.Context, id int64) (*models.Penjualan, error) {
	sale, err := s.store.GetPenjualan(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Penjualan tidak ditemukan")
		}
		return nil, apperr.Internal("failed to get penjualan", err)
	}
	return sale, nil
}

// saleNumber builds TRX-<YYYYMMDDHHMMSS>-<6 hex>.
func (s *Service) saleNumber() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("TRX-%s-%s", s.now().Format("20060102150405"), strings.ToUpper(suffix))
}

func validateSale(in SaleInput) error {
	fields := map[string]string{}
	if in.Bayar.IsNegative() {
		fields["bayar"] = "The bayar must be at least 0."
	}
	if len(in.Items) == 0 {
		fields["items"] = "The items field is required."
	}
	for i, item := range in.Items {
		if item.ObatID <= 0 {
			fields[fmt.Sprintf("items.%d.obat_id", i)] = fmt.Sprintf("The items.%d.obat_id field is required.", i)
		}
		if item.Jumlah < 1 {
			fields[fmt.Sprintf("items.%d.jumlah", i)] = fmt.Sprintf("The items.%d.jumlah must be at least 1.", i)
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("The given data was invalid.", fields)
	}
	return nil
}

// sumQuantities totals jumlah per obat id in first-seen order. A total
// outside the stok column range is a validation error on items.
func sumQuantities(items []SaleItemInput) ([]int64, map[int64]int64, error) {
	var order []int64
	qty := make(map[int64]int64, len(items))
	for _, item := range items {
		if _, ok := qty[item.ObatID]; !ok {
			order = append(order, item.ObatID)
		}
		qty[item.ObatID] += int64(item.Jumlah)
		if qty[item.ObatID] > math.MaxInt32 {
			return nil, nil, apperr.Field("items", "The total jumlah per obat is too large.")
		}
	}
	return order, qty, nil
}

// SellMedicine records a sale and decrements stock atomically. Quantities
// of repeated items are summed before the stock check, and no row is
// written unless every item has enough stock and the payment covers the
// total.
func (s *Service) SellMedicine(ctx context.Context, userID int64, in SaleInput) (*models.Penjualan, error) {
	sale, err := s.sell(ctx, userID, in)
	switch {
	case err == nil:
		s.metrics.Sale(metrics.OutcomeSuccess)
	case apperr.Code(err) == codes.Internal:
		s.metrics.Sale(metrics.OutcomeError)
		return nil, err
	default:
		s.metrics.Sale(metrics.OutcomeRejected)
		return nil, err
	}

	s.invalidateCatalog(ctx)
	s.publish(ctx, redisstore.Event{
		EventType: EventSaleCreated,
		EntityID:  sale.ID,
		Reference: sale.NoTransaksi,
		UserID:    userID,
		Total:     sale.TotalHarga.StringFixed(2),
		Data:      sale,
	})
	return sale, nil
}

func (s *Service) sell(ctx context.Context, userID int64, in SaleInput) (*models.Penjualan, error) {
	if err := validateSale(in); err != nil {
		return nil, err
	}

	order, qty, err := sumQuantities(in.Items)
	if err != nil {
		return nil, err
	}

	var sale *models.Penjualan
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		locked, err := tx.LockObat(ctx, order)
		if err != nil {
			return apperr.Internal("failed to lock obat", err)
		}
		byID := make(map[int64]models.Obat, len(locked))
		for _, o := range locked {
			byID[o.ID] = o
		}

		missing := map[string]string{}
		for i, item := range in.Items {
			if _, ok := byID[item.ObatID]; !ok {
				missing[fmt.Sprintf("items.%d.obat_id", i)] = fmt.Sprintf("The selected items.%d.obat_id is invalid.", i)
			}
		}
		if len(missing) > 0 {
			return apperr.Validation("The given data was invalid.", missing)
		}

		for _, id := range order {
			if o := byID[id]; int64(o.Stok) < qty[id] {
				return apperr.Rule("Stok tidak cukup untuk obat: %s", o.NamaObat)
			}
		}

		total := decimal.Zero
		details := make([]models.PenjualanDetail, 0, len(in.Items))
		for _, item := range in.Items {
			o := byID[item.ObatID]
			subtotal := o.HargaJual.Mul(decimal.NewFromInt32(item.Jumlah))
			details = append(details, models.PenjualanDetail{
				ObatID:   o.ID,
				Qty:      item.Jumlah,
				Harga:    o.HargaJual,
				Subtotal: subtotal,
			})
			total = total.Add(subtotal)
		}

		if in.Bayar.LessThan(total) {
			return apperr.Rule("Uang bayar kurang")
		}

		sale = &models.Penjualan{
			UserID:      userID,
			NoTransaksi: s.saleNumber(),
			TotalHarga:  total,
			Bayar:       in.Bayar,
			Kembali:     in.Bayar.Sub(total),
			Details:     details,
		}
		if err := tx.CreatePenjualan(ctx, sale); err != nil {
			return apperr.Internal("failed to create penjualan", err)
		}

		for _, id := range order {
			if err := tx.DecrementStock(ctx, id, int32(qty[id])); err != nil {
				if errors.Is(err, store.ErrInsufficientStock) {
					return apperr.Rule("Stok tidak cukup untuk obat: %s", byID[id].NamaObat)
				}
				return apperr.Internal("failed to update stok", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("Gagal melakukan penjualan", err)
	}

	return s.GetPenjualan(ctx, sale.ID)
}
