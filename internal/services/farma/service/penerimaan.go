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

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"gorm.io/gorm"
)

type ReceiptItemInput struct {
	ObatID      int64
	Jumlah      int32
	HargaSatuan decimal.Decimal
}

type ReceiveInput struct {
	SupplierID int64
	NoFaktur   string
	Items      []ReceiptItemInput
}

func (s *Service) ListPenerimaan(ctx context.Context, page store.PageFilter) ([]models.Penerimaan, int64, error) {
	receipts, total, err := s.store.ListPenerimaan(ctx, page)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list penerimaan", err)
	}
	return receipts, total, nil
}

func (s *Service) GetPenerimaan(ctx context.Context, id int64) (*models.Penerimaan, error) {
	receipt, err := s.store.GetPenerimaan(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Penerimaan tidak ditemukan")
		}
		return nil, apperr.Internal("failed to get penerimaan", err)
	}
	return receipt, nil
}

func validateReceipt(in ReceiveInput) error {
	fields := map[string]string{}
	if in.SupplierID <= 0 {
		fields["supplier_id"] = "The supplier id field is required."
	}
	if strings.TrimSpace(in.NoFaktur) == "" {
		fields["no_faktur"] = "The no faktur field is required."
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
		if item.HargaSatuan.IsNegative() {
			fields[fmt.Sprintf("items.%d.harga_satuan", i)] = fmt.Sprintf("The items.%d.harga_satuan must be at least 0.", i)
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("The given data was invalid.", fields)
	}
	return nil
}

func duplicateInvoice(noFaktur string) error {
	return apperr.Conflict("No faktur %s sudah pernah diterima", noFaktur)
}

// ReceiveStock books a supplier invoice: one header, one line per item,
// stok += jumlah and harga_beli := harga_satuan per item. With auto markup
// on, harga_jual is recomputed from the new cost.
func (s *Service) ReceiveStock(ctx context.Context, userID int64, in ReceiveInput) (*models.Penerimaan, error) {
	receipt, err := s.receive(ctx, userID, in)
	switch {
	case err == nil:
		s.metrics.StockReceipt(metrics.OutcomeSuccess)
	case apperr.Code(err) == codes.Internal:
		s.metrics.StockReceipt(metrics.OutcomeError)
		return nil, err
	default:
		s.metrics.StockReceipt(metrics.OutcomeRejected)
		return nil, err
	}

	s.invalidateCatalog(ctx)
	s.publish(ctx, redisstore.Event{
		EventType: EventStockReceived,
		EntityID:  receipt.ID,
		Reference: receipt.NoFaktur,
		UserID:    userID,
		Total:     receipt.TotalHarga.StringFixed(2),
		Data:      receipt,
	})
	return receipt, nil
}

func (s *Service) receive(ctx context.Context, userID int64, in ReceiveInput) (*models.Penerimaan, error) {
	in.NoFaktur = strings.TrimSpace(in.NoFaktur)
	if err := validateReceipt(in); err != nil {
		return nil, err
	}

	if _, err := s.store.GetSupplier(ctx, in.SupplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Field("supplier_id", "The selected supplier id is invalid.")
		}
		return nil, apperr.Internal("failed to get supplier", err)
	}

	var ids []int64
	added := make(map[int64]int64, len(in.Items))
	for _, item := range in.Items {
		if _, ok := added[item.ObatID]; !ok {
			ids = append(ids, item.ObatID)
		}
		added[item.ObatID] += int64(item.Jumlah)
	}

	var receipt *models.Penerimaan
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		exists, err := tx.InvoiceExists(ctx, in.NoFaktur)
		if err != nil {
			return apperr.Internal("failed to check no_faktur", err)
		}
		if exists {
			return duplicateInvoice(in.NoFaktur)
		}

		locked, err := tx.LockObat(ctx, ids)
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
		for _, o := range locked {
			if int64(o.Stok)+added[o.ID] > math.MaxInt32 {
				return apperr.Field("items", fmt.Sprintf("Jumlah untuk obat %s melebihi batas stok.", o.NamaObat))
			}
		}

		total := decimal.Zero
		details := make([]models.PenerimaanDetail, 0, len(in.Items))
		for _, item := range in.Items {
			subtotal := item.HargaSatuan.Mul(decimal.NewFromInt32(item.Jumlah))
			details = append(details, models.PenerimaanDetail{
				ObatID:      item.ObatID,
				Jumlah:      item.Jumlah,
				HargaSatuan: item.HargaSatuan,
				Subtotal:    subtotal,
			})
			total = total.Add(subtotal)
		}

		receipt = &models.Penerimaan{
			SupplierID:    in.SupplierID,
			UserID:        userID,
			NoFaktur:      in.NoFaktur,
			TglPenerimaan: s.now(),
			TotalHarga:    total,
			Details:       details,
		}
		if err := tx.CreatePenerimaan(ctx, receipt); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicateInvoice(in.NoFaktur)
			}
			return apperr.Internal("failed to create penerimaan", err)
		}

		for _, item := range in.Items {
			o := byID[item.ObatID]
			hargaJual := s.markup.Apply(o.HargaJual, item.HargaSatuan)
			if err := tx.ApplyReceipt(ctx, o.ID, item.Jumlah, item.HargaSatuan, hargaJual); err != nil {
				return apperr.Internal("failed to update stok", err)
			}
			o.Stok += item.Jumlah
			o.HargaBeli = item.HargaSatuan
			o.HargaJual = hargaJual
			byID[o.ID] = o
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("Gagal menyimpan penerimaan", err)
	}

	return s.GetPenerimaan(ctx, receipt.ID)
}
